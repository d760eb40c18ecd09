package events

import (
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"dealkart/internal/pkg/referrers"
)

// VisitorAppender is the slice of the event log the visitor collector needs.
type VisitorAppender interface {
	AppendVisitor(event VisitorEvent) error
}

// ClickAppender is the slice of the event log the click collector needs.
type ClickAppender interface {
	AppendClick(event ClickEvent) error
}

// LocationResolver resolves a client IP to a best-effort location.
type LocationResolver interface {
	Resolve(ip string) *Location
}

// CollectVisitorInput defines the input required to record a page view.
// Everything here comes from the tracking client except IPAddress, which the
// handler extracts from the request.
type CollectVisitorInput struct {
	SessionID string `json:"sessionId"`
	Page      string `json:"page"`
	Referrer  string `json:"referrer"`
	Device    string `json:"device"`
	Browser   string `json:"browser"`
	OS        string `json:"os"`
	Language  string `json:"language"`
	Timezone  string `json:"timezone"`
	IPAddress string `json:"-"`
}

// CollectClickInput defines the input required to record an affiliate click.
// Title, platform and price are snapshots sent by the client at click time.
type CollectClickInput struct {
	SessionID    string `json:"sessionId"`
	ProductID    string `json:"productId"`
	ProductTitle string `json:"productTitle"`
	Platform     string `json:"platform"`
	Price        int    `json:"price"`
	IPAddress    string `json:"-"`
}

var labelCaser = cases.Title(language.AmericanEnglish)

// CollectVisitor stamps and stores a visitor event. The timestamp is always
// assigned here, never taken from the client. A missing session id is
// accepted as-is; it simply forms its own single-event session downstream.
func CollectVisitor(log VisitorAppender, resolver LocationResolver, logger *slog.Logger, input *CollectVisitorInput) error {
	ip := input.IPAddress
	if ip == "" {
		ip = LocalhostIP
	}

	var location *Location
	if resolver != nil {
		location = resolver.Resolve(input.IPAddress)
	}
	if location == nil {
		location = LocalLocation()
	}

	event := VisitorEvent{
		SessionID: input.SessionID,
		Timestamp: time.Now().UTC(),
		Page:      input.Page,
		Referrer:  referrers.FromURL(input.Referrer),
		Device:    normalizeLabel(input.Device),
		Browser:   normalizeLabel(input.Browser),
		OS:        normalizeLabel(input.OS),
		Language:  input.Language,
		Timezone:  input.Timezone,
		IP:        ip,
		Location:  location,
	}

	if err := log.AppendVisitor(event); err != nil {
		logger.Error("Failed to store visitor event",
			slog.String("session_id", input.SessionID),
			slog.Any("error", err))
		return fmt.Errorf("failed to store visitor event: %w", err)
	}
	return nil
}

// CollectClick stamps and stores a click event.
func CollectClick(log ClickAppender, logger *slog.Logger, input *CollectClickInput) error {
	ip := input.IPAddress
	if ip == "" {
		ip = LocalhostIP
	}

	platform := input.Platform
	if platform == "" {
		platform = PlatformOther
	}

	event := ClickEvent{
		SessionID:    input.SessionID,
		Timestamp:    time.Now().UTC(),
		ProductID:    input.ProductID,
		ProductTitle: input.ProductTitle,
		Platform:     platform,
		Price:        input.Price,
		IP:           ip,
	}

	if err := log.AppendClick(event); err != nil {
		logger.Error("Failed to store click event",
			slog.String("session_id", input.SessionID),
			slog.String("product_id", input.ProductID),
			slog.Any("error", err))
		return fmt.Errorf("failed to store click event: %w", err)
	}
	return nil
}

// normalizeLabel title-cases a client-supplied label ("mobile" -> "Mobile").
// Empty labels stay empty; defaulting happens at aggregation time.
func normalizeLabel(label string) string {
	if label == "" {
		return ""
	}
	return labelCaser.String(label)
}
