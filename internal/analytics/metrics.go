package analytics

import (
	"math"
	"sort"

	"dealkart/internal/events"
)

// buildSummary computes the headline counters. TotalVisitors counts page
// views, not sessions. The conversion rate is defined as 0 for an empty
// window rather than failing on the zero denominator.
func buildSummary(visitors []events.VisitorEvent, clicks []events.ClickEvent) Summary {
	unique := make(map[string]struct{}, len(visitors))
	for _, v := range visitors {
		unique[v.SessionID] = struct{}{}
	}

	rate := 0.0
	if len(visitors) > 0 {
		rate = float64(len(clicks)) / float64(len(visitors)) * 100
		rate = math.Round(rate*10) / 10
	}

	return Summary{
		TotalVisitors:  len(visitors),
		UniqueVisitors: len(unique),
		TotalClicks:    len(clicks),
		ConversionRate: rate,
	}
}

// topProducts groups clicks by product id. The retained title/platform is
// the last one seen in storage order, so a product renamed mid-window shows
// its latest label. Ties rank in first-appearance order.
func topProducts(clicks []events.ClickEvent) []ProductClickResult {
	index := make(map[string]int, len(clicks))
	results := make([]ProductClickResult, 0, len(clicks))

	for _, c := range clicks {
		i, seen := index[c.ProductID]
		if !seen {
			index[c.ProductID] = len(results)
			results = append(results, ProductClickResult{ProductID: c.ProductID})
			i = len(results) - 1
		}
		results[i].ProductTitle = c.ProductTitle
		results[i].Platform = c.Platform
		results[i].Count++
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Count > results[b].Count
	})
	if len(results) > topProductsLimit {
		results = results[:topProductsLimit]
	}
	return results
}

// topSources ranks visitor referrers, defaulting missing ones to Direct.
func topSources(visitors []events.VisitorEvent) []MetricCountResult {
	counter := newOrderedCounter()
	for _, v := range visitors {
		name := v.Referrer
		if name == "" {
			name = events.DirectReferrer
		}
		counter.add(name)
	}
	return counter.top(topSourcesLimit)
}

// deviceBreakdown returns the full device frequency map.
func deviceBreakdown(visitors []events.VisitorEvent) map[string]int {
	devices := make(map[string]int)
	for _, v := range visitors {
		name := v.Device
		if name == "" {
			name = events.DefaultDevice
		}
		devices[name]++
	}
	return devices
}

// browserBreakdown returns the full browser frequency map.
func browserBreakdown(visitors []events.VisitorEvent) map[string]int {
	browsers := make(map[string]int)
	for _, v := range visitors {
		name := v.Browser
		if name == "" {
			name = events.DefaultBrowser
		}
		browsers[name]++
	}
	return browsers
}

// topLocations ranks visitor countries. Events without a resolved country,
// or with the Unknown sentinel, are excluded entirely.
func topLocations(visitors []events.VisitorEvent) []MetricCountResult {
	counter := newOrderedCounter()
	for _, v := range visitors {
		if v.Location == nil || v.Location.Country == "" || v.Location.Country == events.UnknownCountry {
			continue
		}
		counter.add(v.Location.Country)
	}
	return counter.top(topLocationsLimit)
}

// recentClicks returns the last clicks in storage order, newest first.
func recentClicks(clicks []events.ClickEvent) []events.ClickEvent {
	n := len(clicks)
	if n > recentClicksLimit {
		clicks = clicks[n-recentClicksLimit:]
		n = recentClicksLimit
	}

	reversed := make([]events.ClickEvent, n)
	for i, c := range clicks {
		reversed[n-1-i] = c
	}
	return reversed
}

// orderedCounter counts labels while remembering first-seen order, so that
// equal counts rank deterministically.
type orderedCounter struct {
	index   map[string]int
	results []MetricCountResult
}

func newOrderedCounter() *orderedCounter {
	return &orderedCounter{index: make(map[string]int)}
}

func (c *orderedCounter) add(name string) {
	i, seen := c.index[name]
	if !seen {
		c.index[name] = len(c.results)
		c.results = append(c.results, MetricCountResult{Name: name})
		i = len(c.results) - 1
	}
	c.results[i].Count++
}

func (c *orderedCounter) top(limit int) []MetricCountResult {
	results := c.results
	if results == nil {
		return []MetricCountResult{}
	}
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Count > results[b].Count
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
