// Package analytics computes the dashboard read-model from the raw event
// log. Everything here is a pure transformation: no state is retained
// between queries and the log is never mutated.
package analytics

import (
	"log/slog"
	"time"

	"dealkart/internal/eventlog"
	"dealkart/internal/events"
)

// Result-set caps. The dashboard shows fixed-size rankings; device and
// browser breakdowns are full-cardinality maps and are not truncated.
const (
	topProductsLimit    = 10
	topSourcesLimit     = 8
	topLocationsLimit   = 5
	recentClicksLimit   = 30
	visitorProfileLimit = 100
)

// DefaultWindowDays is the query window applied when none is requested.
const DefaultWindowDays = 30

// QueryParams selects the aggregation window and the level of detail.
type QueryParams struct {
	WindowDays      int
	IncludeVisitors bool
	// Now anchors the window; the zero value means time.Now. Injected by
	// tests so windows are reproducible.
	Now time.Time
}

// Summary holds the headline counters for the requested window.
type Summary struct {
	TotalVisitors  int     `json:"totalVisitors"`
	UniqueVisitors int     `json:"uniqueVisitors"`
	TotalClicks    int     `json:"totalClicks"`
	ConversionRate float64 `json:"conversionRate"`
}

// ChartPoint is one day in the dashboard time series.
type ChartPoint struct {
	Date     string `json:"date"`
	Visitors int    `json:"visitors"`
	Clicks   int    `json:"clicks"`
}

// ProductClickResult ranks a product by clicks, carrying the last-seen
// title/platform snapshot for display.
type ProductClickResult struct {
	ProductID    string `json:"productId"`
	ProductTitle string `json:"productTitle"`
	Platform     string `json:"platform"`
	Count        int    `json:"count"`
}

// MetricCountResult is a generic name/count ranking entry.
type MetricCountResult struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ClickSummary is the per-visitor click detail embedded in a profile.
type ClickSummary struct {
	ProductTitle string    `json:"productTitle"`
	Platform     string    `json:"platform"`
	Price        int       `json:"price"`
	Timestamp    time.Time `json:"timestamp"`
}

// VisitorProfile is a session reconstructed from the flat event log. It is
// derived on every query and never persisted.
type VisitorProfile struct {
	SessionID  string           `json:"sessionId"`
	IP         string           `json:"ip"`
	Location   *events.Location `json:"location"`
	Device     string           `json:"device"`
	Browser    string           `json:"browser"`
	OS         string           `json:"os"`
	Referrer   string           `json:"referrer"`
	Language   string           `json:"language"`
	Timezone   string           `json:"timezone"`
	FirstVisit time.Time        `json:"firstVisit"`
	LastVisit  time.Time        `json:"lastVisit"`
	PageViews  int              `json:"pageViews"`
	Pages      []string         `json:"pages"`
	Clicks     []ClickSummary   `json:"clicks"`
}

// ReadModel is the aggregated query response consumed by the dashboard.
// Visitors is nil (and omitted from JSON) unless visitor detail was
// requested; a requested-but-empty window renders as [].
type ReadModel struct {
	Summary      Summary              `json:"summary"`
	ChartData    []ChartPoint         `json:"chartData"`
	TopProducts  []ProductClickResult `json:"topProducts"`
	Sources      []MetricCountResult  `json:"sources"`
	Devices      map[string]int       `json:"devices"`
	Browsers     map[string]int       `json:"browsers"`
	Locations    []MetricCountResult  `json:"locations"`
	RecentClicks []events.ClickEvent  `json:"recentClicks"`
	Visitors     *[]VisitorProfile    `json:"visitors,omitempty"`
}

// Query reads the event log and computes the read-model. An unreadable or
// absent log degrades to the all-zero read-model; absence of telemetry is
// not an error.
func Query(log eventlog.Log, logger *slog.Logger, params QueryParams) *ReadModel {
	data, err := log.ReadAll()
	if err != nil || data == nil {
		if err != nil {
			logger.Warn("Failed to read event log, returning empty analytics", slog.Any("error", err))
		}
		data = &eventlog.Data{}
	}
	return Compute(data, params)
}

// Compute folds the event log into the read-model for the given window.
func Compute(data *eventlog.Data, params QueryParams) *ReadModel {
	if params.WindowDays < 1 {
		params.WindowDays = DefaultWindowDays
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	// Inclusive lower bound, no upper bound: "now" is implicit.
	start := now.Add(-time.Duration(params.WindowDays) * 24 * time.Hour)

	visitors := filterVisitors(data.Visitors, start)
	clicks := filterClicks(data.Clicks, start)

	model := &ReadModel{
		Summary:      buildSummary(visitors, clicks),
		ChartData:    buildChartData(visitors, clicks, params.WindowDays, now),
		TopProducts:  topProducts(clicks),
		Sources:      topSources(visitors),
		Devices:      deviceBreakdown(visitors),
		Browsers:     browserBreakdown(visitors),
		Locations:    topLocations(visitors),
		RecentClicks: recentClicks(clicks),
	}

	if params.IncludeVisitors {
		profiles := reconstructSessions(visitors, clicks)
		model.Visitors = &profiles
	}

	return model
}

func filterVisitors(all []events.VisitorEvent, start time.Time) []events.VisitorEvent {
	filtered := make([]events.VisitorEvent, 0, len(all))
	for _, v := range all {
		if !v.Timestamp.Before(start) {
			filtered = append(filtered, v)
		}
	}
	return filtered
}

func filterClicks(all []events.ClickEvent, start time.Time) []events.ClickEvent {
	filtered := make([]events.ClickEvent, 0, len(all))
	for _, c := range all {
		if !c.Timestamp.Before(start) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}
