package analytics

import (
	"sort"

	"dealkart/internal/events"
)

// reconstructSessions folds the filtered visitor events into per-session
// profiles, then attaches click detail. Clicks whose session has no visitor
// event in the window are dropped here; they still count in the aggregate
// summaries, which run independently over the full filtered click list.
func reconstructSessions(visitors []events.VisitorEvent, clicks []events.ClickEvent) []VisitorProfile {
	index := make(map[string]int, len(visitors))
	profiles := make([]VisitorProfile, 0, len(visitors))

	for _, v := range visitors {
		i, seen := index[v.SessionID]
		if !seen {
			index[v.SessionID] = len(profiles)
			profiles = append(profiles, seedProfile(v))
			continue
		}

		p := &profiles[i]
		p.PageViews++
		p.LastVisit = v.Timestamp
		if !containsPage(p.Pages, v.Page) {
			p.Pages = append(p.Pages, v.Page)
		}
	}

	for _, c := range clicks {
		i, seen := index[c.SessionID]
		if !seen {
			continue
		}
		profiles[i].Clicks = append(profiles[i].Clicks, ClickSummary{
			ProductTitle: c.ProductTitle,
			Platform:     c.Platform,
			Price:        c.Price,
			Timestamp:    c.Timestamp,
		})
	}

	sort.SliceStable(profiles, func(a, b int) bool {
		return profiles[a].LastVisit.After(profiles[b].LastVisit)
	})
	if len(profiles) > visitorProfileLimit {
		profiles = profiles[:visitorProfileLimit]
	}
	return profiles
}

// seedProfile opens a profile from the session's first event in the window.
// The defaults mirror what the dashboard expects for sparse dev traffic.
func seedProfile(v events.VisitorEvent) VisitorProfile {
	profile := VisitorProfile{
		SessionID:  v.SessionID,
		IP:         v.IP,
		Location:   v.Location,
		Device:     v.Device,
		Browser:    v.Browser,
		OS:         v.OS,
		Referrer:   v.Referrer,
		Language:   v.Language,
		Timezone:   v.Timezone,
		FirstVisit: v.Timestamp,
		LastVisit:  v.Timestamp,
		PageViews:  1,
		Pages:      []string{v.Page},
		Clicks:     []ClickSummary{},
	}

	if profile.IP == "" {
		profile.IP = events.LocalhostIP
	}
	if profile.Location == nil {
		profile.Location = events.LocalLocation()
	}
	if profile.Device == "" {
		profile.Device = events.DefaultDevice
	}
	if profile.Browser == "" {
		profile.Browser = "Chrome"
	}
	if profile.OS == "" {
		profile.OS = "Unknown"
	}
	if profile.Referrer == "" {
		profile.Referrer = events.DirectReferrer
	}
	if profile.Language == "" {
		profile.Language = "English"
	}
	if profile.Timezone == "" {
		profile.Timezone = "UTC"
	}
	return profile
}

func containsPage(pages []string, page string) bool {
	for _, p := range pages {
		if p == page {
			return true
		}
	}
	return false
}
