package events

import "time"

// Platform labels recognized for affiliate clicks.
const (
	PlatformAmazon   = "Amazon"
	PlatformFlipkart = "Flipkart"
	PlatformMyntra   = "Myntra"
	PlatformAjio     = "Ajio"
	PlatformSnapdeal = "Snapdeal"
	PlatformOther    = "Other"
)

// Defaulting labels applied when the tracking client omits a field.
const (
	DirectReferrer = "Direct"
	DefaultDevice  = "Desktop"
	DefaultBrowser = "Other"
	UnknownCountry = "Unknown"
	LocalhostIP    = "Localhost"
)

// Location is a best-effort geolocation snapshot resolved at ingest time.
type Location struct {
	City        string `json:"city"`
	Country     string `json:"country"`
	CountryCode string `json:"countryCode,omitempty"`
	Region      string `json:"region,omitempty"`
	ISP         string `json:"isp,omitempty"`
}

// LocalLocation is the sentinel used for private/loopback addresses and for
// any failed lookup. Geolocation never blocks or fails a write.
func LocalLocation() *Location {
	return &Location{City: "Local", Country: "Development"}
}

// VisitorEvent is one page-view row in the event log. Immutable once stored;
// the timestamp is always server-assigned.
type VisitorEvent struct {
	SessionID string    `json:"sessionId"`
	Timestamp time.Time `json:"timestamp"`
	Page      string    `json:"page"`
	Referrer  string    `json:"referrer,omitempty"`
	Device    string    `json:"device,omitempty"`
	Browser   string    `json:"browser,omitempty"`
	OS        string    `json:"os,omitempty"`
	Language  string    `json:"language,omitempty"`
	Timezone  string    `json:"timezone,omitempty"`
	IP        string    `json:"ip,omitempty"`
	Location  *Location `json:"location,omitempty"`
}

// ClickEvent is one affiliate-link activation row in the event log. Product
// title, platform and price are denormalized snapshots taken at click time,
// so the row stays meaningful if the product record is deleted later.
type ClickEvent struct {
	SessionID    string    `json:"sessionId"`
	Timestamp    time.Time `json:"timestamp"`
	ProductID    string    `json:"productId"`
	ProductTitle string    `json:"productTitle"`
	Platform     string    `json:"platform"`
	Price        int       `json:"price"`
	IP           string    `json:"ip,omitempty"`
}
