package eventlog

import (
	"sync"

	"dealkart/internal/events"
)

// MemoryLog is an in-memory Log implementation. It backs tests and lets the
// aggregator be exercised without touching the filesystem.
type MemoryLog struct {
	mu       sync.RWMutex
	visitors []events.VisitorEvent
	clicks   []events.ClickEvent
}

// NewMemoryLog creates an empty in-memory event log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{
		visitors: []events.VisitorEvent{},
		clicks:   []events.ClickEvent{},
	}
}

// AppendVisitor appends a visitor event.
func (l *MemoryLog) AppendVisitor(event events.VisitorEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.visitors = append(l.visitors, event)
	return nil
}

// AppendClick appends a click event.
func (l *MemoryLog) AppendClick(event events.ClickEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.clicks = append(l.clicks, event)
	return nil
}

// ReadAll returns a copy of the stored events.
func (l *MemoryLog) ReadAll() (*Data, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	data := &Data{
		Visitors: make([]events.VisitorEvent, len(l.visitors)),
		Clicks:   make([]events.ClickEvent, len(l.clicks)),
	}
	copy(data.Visitors, l.visitors)
	copy(data.Clicks, l.clicks)
	return data, nil
}
