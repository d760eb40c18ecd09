// Package eventlog persists the append-only analytics event log.
//
// The log is a single flat JSON document holding every visitor and click
// event. Appends are full read-merge-write cycles, so every writer must go
// through the same Log instance, which serializes the whole span. Readers
// always observe either the pre- or post-append file thanks to the atomic
// replace on write.
package eventlog

import "dealkart/internal/events"

// Data is the on-disk shape of the event log.
type Data struct {
	Visitors []events.VisitorEvent `json:"visitors"`
	Clicks   []events.ClickEvent   `json:"clicks"`
}

// Log is the storage contract for the analytics event log. AppendVisitor and
// AppendClick are the only mutators; ReadAll never mutates. A missing or
// unreadable log reads as empty rather than failing - absence of telemetry
// is not an error state.
type Log interface {
	AppendVisitor(event events.VisitorEvent) error
	AppendClick(event events.ClickEvent) error
	ReadAll() (*Data, error)
}
