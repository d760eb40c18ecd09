package analytics

import (
	"time"

	"dealkart/internal/events"
)

// Day bucketing is the UTC calendar day encoded in the timestamp, matching
// a string-prefix comparison on the stored ISO instants. This is a faithful
// reproduction requirement: switching to timezone-aware local days would
// move the reported daily boundaries.
const dayKeyFormat = "2006-01-02"

// chartDateFormat is the display label the dashboard charts render.
const chartDateFormat = "Jan 2"

// buildChartData produces exactly windowDays points ending today, oldest
// first. Days without traffic appear as zero points; the series never has
// gaps.
func buildChartData(visitors []events.VisitorEvent, clicks []events.ClickEvent, windowDays int, now time.Time) []ChartPoint {
	visitorsByDay := make(map[string]int, windowDays)
	for _, v := range visitors {
		visitorsByDay[v.Timestamp.UTC().Format(dayKeyFormat)]++
	}
	clicksByDay := make(map[string]int, windowDays)
	for _, c := range clicks {
		clicksByDay[c.Timestamp.UTC().Format(dayKeyFormat)]++
	}

	series := make([]ChartPoint, 0, windowDays)
	for i := windowDays - 1; i >= 0; i-- {
		day := now.UTC().Add(-time.Duration(i) * 24 * time.Hour)
		key := day.Format(dayKeyFormat)
		series = append(series, ChartPoint{
			Date:     day.Format(chartDateFormat),
			Visitors: visitorsByDay[key],
			Clicks:   clicksByDay[key],
		})
	}
	return series
}
