package scraper

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealkart/internal/events"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://www.amazon.in/dp/B0ABC123?tag=deals-21", events.PlatformAmazon},
		{"https://www.flipkart.com/shoes/p/itm123", events.PlatformFlipkart},
		{"https://www.myntra.com/kurta-set/12345", events.PlatformMyntra},
		{"https://www.ajio.com/watch/p/460123", events.PlatformAjio},
		{"https://www.snapdeal.com/product/bottle/98765", events.PlatformSnapdeal},
		{"https://WWW.AMAZON.IN/DP/UPPER", events.PlatformAmazon},
		{"https://example.com/some-product", events.PlatformOther},
		{"", events.PlatformOther},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, DetectPlatform(tt.url), "url: %s", tt.url)
	}
}

func TestExtract(t *testing.T) {
	t.Run("prefers Open Graph metadata", func(t *testing.T) {
		html := `<html><head>
			<meta property="og:title" content="Wireless Headphones &amp; Case"/>
			<meta property="og:image" content="https://cdn.example.com/headphones.jpg"/>
			<meta property="og:description" content="Noise cancelling over-ear headphones"/>
			<title>Some Store Page</title>
			</head><body><h1>Ignored Heading</h1><p>Price: ₹7,999 only</p></body></html>`

		draft := Extract(html, "https://www.amazon.in/dp/B0TEST", events.PlatformAmazon)

		assert.Equal(t, "Wireless Headphones & Case", draft.Title)
		assert.Equal(t, "https://cdn.example.com/headphones.jpg", draft.Image)
		assert.Equal(t, "Noise cancelling over-ear headphones", draft.Description)
		assert.Equal(t, 7999, draft.Price)
		assert.Equal(t, 9599, draft.OriginalPrice)
		assert.Equal(t, events.PlatformAmazon, draft.Platform)
		assert.Equal(t, "https://www.amazon.in/dp/B0TEST", draft.AffiliateLink)
		assert.Equal(t, "General", draft.Category)
		assert.False(t, draft.FetchFailed)
	})

	t.Run("falls back to h1 then title tag", func(t *testing.T) {
		html := `<html><head><title>Store | Running Shoes</title></head>
			<body><h1 class="pdp">Men's <span>Running</span> Shoes</h1></body></html>`

		draft := Extract(html, "https://www.flipkart.com/p/1", events.PlatformFlipkart)
		assert.Equal(t, "Men's Running Shoes", draft.Title)

		htmlNoH1 := `<html><head><title>Store | Running Shoes</title></head><body></body></html>`
		draft = Extract(htmlNoH1, "https://www.flipkart.com/p/1", events.PlatformFlipkart)
		assert.Equal(t, "Store | Running Shoes", draft.Title)
	})

	t.Run("falls back to the first absolute image", func(t *testing.T) {
		html := `<html><body><img src="/relative.png"><img src="https://cdn.example.com/pic.jpg"></body></html>`

		draft := Extract(html, "https://example.com/p", events.PlatformOther)
		assert.Equal(t, "https://cdn.example.com/pic.jpg", draft.Image)
	})

	t.Run("parses entity-encoded and Rs-prefixed prices", func(t *testing.T) {
		draft := Extract(`<p>&#8377; 1,299</p>`, "u", events.PlatformOther)
		assert.Equal(t, 1299, draft.Price)

		draft = Extract(`<p>Rs. 2499</p>`, "u", events.PlatformOther)
		assert.Equal(t, 2499, draft.Price)

		draft = Extract(`<p>no price here</p>`, "u", events.PlatformOther)
		assert.Equal(t, 0, draft.Price)
		assert.Equal(t, 0, draft.OriginalPrice)
	})

	t.Run("uses placeholders when nothing matches", func(t *testing.T) {
		draft := Extract("<html><body></body></html>", "https://example.com/p", events.PlatformOther)

		assert.Equal(t, "Product Title", draft.Title)
		assert.Equal(t, "No description available", draft.Description)
		assert.Empty(t, draft.Image)
	})

	t.Run("clips long titles and descriptions", func(t *testing.T) {
		longTitle := strings.Repeat("a", 200)
		longDesc := strings.Repeat("b", 400)
		html := `<meta property="og:title" content="` + longTitle + `"/>` +
			`<meta property="og:description" content="` + longDesc + `"/>`

		draft := Extract(html, "u", events.PlatformOther)
		assert.Len(t, draft.Title, maxTitleLen)
		assert.Len(t, draft.Description, maxDescriptionLen+3)
		assert.True(t, strings.HasSuffix(draft.Description, "..."))
	})
}

func TestScrape(t *testing.T) {
	t.Run("extracts a draft from a live page", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NotEmpty(t, r.Header.Get("User-Agent"))
			w.Write([]byte(`<html><head>
				<meta property="og:title" content="Smart Band"/>
				</head><body>₹1,999</body></html>`))
		}))
		defer server.Close()

		s := New(2*time.Second, newTestLogger())
		draft := s.Scrape(server.URL + "/product")

		require.NotNil(t, draft)
		assert.Equal(t, "Smart Band", draft.Title)
		assert.Equal(t, 1999, draft.Price)
		assert.False(t, draft.FetchFailed)
	})

	t.Run("returns the fallback draft on a non-200 response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		s := New(2*time.Second, newTestLogger())
		draft := s.Scrape(server.URL)

		require.NotNil(t, draft)
		assert.True(t, draft.FetchFailed)
		assert.Equal(t, server.URL, draft.AffiliateLink)
		assert.Contains(t, draft.Description, "enter manually")
	})

	t.Run("returns the fallback draft when the host is unreachable", func(t *testing.T) {
		s := New(500*time.Millisecond, newTestLogger())
		draft := s.Scrape("http://127.0.0.1:1/nothing")

		require.NotNil(t, draft)
		assert.True(t, draft.FetchFailed)
		assert.Equal(t, events.PlatformOther, draft.Platform)
	})

	t.Run("keeps the detected platform on failure", func(t *testing.T) {
		s := New(500*time.Millisecond, newTestLogger())
		draft := s.Scrape("http://amazon.invalid/dp/B0MISSING")

		require.NotNil(t, draft)
		assert.True(t, draft.FetchFailed)
		assert.Equal(t, events.PlatformAmazon, draft.Platform)
		assert.Equal(t, "Product from Amazon", draft.Title)
	})
}
