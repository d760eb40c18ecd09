package events

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// captureLog records appended events for assertions.
type captureLog struct {
	visitors []VisitorEvent
	clicks   []ClickEvent
	err      error
}

func (l *captureLog) AppendVisitor(event VisitorEvent) error {
	if l.err != nil {
		return l.err
	}
	l.visitors = append(l.visitors, event)
	return nil
}

func (l *captureLog) AppendClick(event ClickEvent) error {
	if l.err != nil {
		return l.err
	}
	l.clicks = append(l.clicks, event)
	return nil
}

// staticResolver returns a fixed location for every IP.
type staticResolver struct {
	location *Location
}

func (r staticResolver) Resolve(ip string) *Location { return r.location }

func TestCollectVisitor(t *testing.T) {
	t.Run("stamps a server-side timestamp", func(t *testing.T) {
		log := &captureLog{}
		before := time.Now().UTC()

		err := CollectVisitor(log, nil, newTestLogger(), &CollectVisitorInput{
			SessionID: "s1",
			Page:      "/products",
		})
		require.NoError(t, err)
		require.Len(t, log.visitors, 1)

		event := log.visitors[0]
		assert.Equal(t, "s1", event.SessionID)
		assert.Equal(t, "/products", event.Page)
		assert.False(t, event.Timestamp.Before(before))
		assert.False(t, event.Timestamp.After(time.Now().UTC()))
	})

	t.Run("normalizes client labels to title case", func(t *testing.T) {
		log := &captureLog{}

		err := CollectVisitor(log, nil, newTestLogger(), &CollectVisitorInput{
			SessionID: "s1",
			Page:      "/",
			Device:    "mobile",
			Browser:   "chrome",
			OS:        "android",
		})
		require.NoError(t, err)
		require.Len(t, log.visitors, 1)

		event := log.visitors[0]
		assert.Equal(t, "Mobile", event.Device)
		assert.Equal(t, "Chrome", event.Browser)
		assert.Equal(t, "Android", event.OS)
	})

	t.Run("maps URL referrers to friendly source names", func(t *testing.T) {
		log := &captureLog{}

		err := CollectVisitor(log, nil, newTestLogger(), &CollectVisitorInput{
			SessionID: "s1",
			Page:      "/",
			Referrer:  "https://www.google.com/search?q=deals",
		})
		require.NoError(t, err)
		assert.Equal(t, "Google", log.visitors[0].Referrer)

		err = CollectVisitor(log, nil, newTestLogger(), &CollectVisitorInput{
			SessionID: "s2",
			Page:      "/",
			Referrer:  "Instagram",
		})
		require.NoError(t, err)
		assert.Equal(t, "Instagram", log.visitors[1].Referrer)
	})

	t.Run("leaves empty labels empty", func(t *testing.T) {
		log := &captureLog{}

		err := CollectVisitor(log, nil, newTestLogger(), &CollectVisitorInput{SessionID: "s1", Page: "/"})
		require.NoError(t, err)

		event := log.visitors[0]
		assert.Empty(t, event.Device)
		assert.Empty(t, event.Browser)
	})

	t.Run("defaults IP and location without a resolver", func(t *testing.T) {
		log := &captureLog{}

		err := CollectVisitor(log, nil, newTestLogger(), &CollectVisitorInput{SessionID: "s1", Page: "/"})
		require.NoError(t, err)

		event := log.visitors[0]
		assert.Equal(t, LocalhostIP, event.IP)
		assert.Equal(t, LocalLocation(), event.Location)
	})

	t.Run("uses the resolved location when available", func(t *testing.T) {
		log := &captureLog{}
		resolver := staticResolver{location: &Location{City: "Mumbai", Country: "India"}}

		err := CollectVisitor(log, resolver, newTestLogger(), &CollectVisitorInput{
			SessionID: "s1",
			Page:      "/",
			IPAddress: "103.21.244.1",
		})
		require.NoError(t, err)

		event := log.visitors[0]
		assert.Equal(t, "103.21.244.1", event.IP)
		assert.Equal(t, "India", event.Location.Country)
	})

	t.Run("falls back to the local sentinel when resolution fails", func(t *testing.T) {
		log := &captureLog{}
		resolver := staticResolver{location: nil}

		err := CollectVisitor(log, resolver, newTestLogger(), &CollectVisitorInput{
			SessionID: "s1",
			Page:      "/",
			IPAddress: "192.168.1.10",
		})
		require.NoError(t, err)
		assert.Equal(t, LocalLocation(), log.visitors[0].Location)
	})

	t.Run("surfaces append failures", func(t *testing.T) {
		log := &captureLog{err: errors.New("disk full")}

		err := CollectVisitor(log, nil, newTestLogger(), &CollectVisitorInput{SessionID: "s1", Page: "/"})
		assert.Error(t, err)
	})
}

func TestCollectClick(t *testing.T) {
	t.Run("stores the click snapshot", func(t *testing.T) {
		log := &captureLog{}

		err := CollectClick(log, newTestLogger(), &CollectClickInput{
			SessionID:    "s1",
			ProductID:    "p1",
			ProductTitle: "Headphones",
			Platform:     PlatformFlipkart,
			Price:        2499,
			IPAddress:    "103.21.244.1",
		})
		require.NoError(t, err)
		require.Len(t, log.clicks, 1)

		event := log.clicks[0]
		assert.Equal(t, "p1", event.ProductID)
		assert.Equal(t, "Headphones", event.ProductTitle)
		assert.Equal(t, PlatformFlipkart, event.Platform)
		assert.Equal(t, 2499, event.Price)
		assert.Equal(t, "103.21.244.1", event.IP)
		assert.False(t, event.Timestamp.IsZero())
	})

	t.Run("defaults platform and IP", func(t *testing.T) {
		log := &captureLog{}

		err := CollectClick(log, newTestLogger(), &CollectClickInput{
			SessionID: "s1",
			ProductID: "p1",
		})
		require.NoError(t, err)

		event := log.clicks[0]
		assert.Equal(t, PlatformOther, event.Platform)
		assert.Equal(t, LocalhostIP, event.IP)
	})

	t.Run("surfaces append failures", func(t *testing.T) {
		log := &captureLog{err: errors.New("disk full")}

		err := CollectClick(log, newTestLogger(), &CollectClickInput{SessionID: "s1", ProductID: "p1"})
		assert.Error(t, err)
	})
}
