package eventlog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"dealkart/internal/events"
)

// FileLog stores the event log as a JSON file. A single mutex covers the
// full read-merge-write span of every append; without it two concurrent
// writers would overwrite each other's rows.
type FileLog struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewFileLog creates a file-backed event log at path. The file is created
// lazily on first append.
func NewFileLog(path string, logger *slog.Logger) *FileLog {
	return &FileLog{path: path, logger: logger}
}

// AppendVisitor appends a visitor event to the log.
func (l *FileLog) AppendVisitor(event events.VisitorEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data := l.readLocked()
	data.Visitors = append(data.Visitors, event)
	return l.writeLocked(data)
}

// AppendClick appends a click event to the log.
func (l *FileLog) AppendClick(event events.ClickEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data := l.readLocked()
	data.Clicks = append(data.Clicks, event)
	return l.writeLocked(data)
}

// ReadAll returns the current contents of the log. Reads take the file
// snapshot as-is; the atomic replace on write guarantees it is never torn.
func (l *FileLog) ReadAll() (*Data, error) {
	return l.read(), nil
}

func (l *FileLog) read() *Data {
	data := &Data{
		Visitors: []events.VisitorEvent{},
		Clicks:   []events.ClickEvent{},
	}

	raw, err := os.ReadFile(l.path)
	if err != nil {
		if !os.IsNotExist(err) {
			l.logger.Warn("Failed to read event log, treating as empty",
				slog.String("path", l.path),
				slog.Any("error", err))
		}
		return data
	}

	if err := json.Unmarshal(raw, data); err != nil {
		l.logger.Warn("Event log is corrupt, treating as empty",
			slog.String("path", l.path),
			slog.Any("error", err))
		return &Data{
			Visitors: []events.VisitorEvent{},
			Clicks:   []events.ClickEvent{},
		}
	}

	if data.Visitors == nil {
		data.Visitors = []events.VisitorEvent{}
	}
	if data.Clicks == nil {
		data.Clicks = []events.ClickEvent{}
	}
	return data
}

func (l *FileLog) readLocked() *Data {
	return l.read()
}

// writeLocked replaces the log file atomically: marshal to a temp file in
// the same directory, then rename over the target.
func (l *FileLog) writeLocked(data *Data) error {
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create event log directory: %w", err)
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal event log: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".events-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp event log: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp event log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp event log: %w", err)
	}

	if err := os.Rename(tmpName, l.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace event log: %w", err)
	}
	return nil
}
