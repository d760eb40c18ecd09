// Package scraper extracts product metadata from e-commerce pages.
//
// Extraction is deliberately heuristic: a handful of PCRE patterns over the
// raw HTML (Open Graph tags, the title/h1, rupee price fragments). Anything
// it cannot find falls back to a draft the admin fills in manually -
// scraping never returns an error.
package scraper

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.elara.ws/pcre"

	"dealkart/internal/events"
)

const (
	maxTitleLen       = 150
	maxDescriptionLen = 300
	maxBodyBytes      = 2 << 20 // 2 MiB is plenty for metadata extraction
)

// ProductDraft is the pre-filled product form returned to the admin console.
type ProductDraft struct {
	Title         string `json:"title"`
	Image         string `json:"image"`
	Price         int    `json:"price"`
	OriginalPrice int    `json:"originalPrice"`
	Description   string `json:"description"`
	Platform      string `json:"platform"`
	AffiliateLink string `json:"affiliateLink"`
	Category      string `json:"category"`
	FetchFailed   bool   `json:"fetchFailed,omitempty"`
}

var (
	ogTitleRe     = pcre.MustCompile(`(?is)<meta[^>]+property=["']og:title["'][^>]+content=["']([^"']+)["']`)
	titleTagRe    = pcre.MustCompile(`(?is)<title[^>]*>([^<]+)</title>`)
	h1Re          = pcre.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)
	ogImageRe     = pcre.MustCompile(`(?is)<meta[^>]+property=["']og:image["'][^>]+content=["']([^"']+)["']`)
	firstImageRe  = pcre.MustCompile(`(?is)<img[^>]+src=["'](https?://[^"']+)["']`)
	ogDescRe      = pcre.MustCompile(`(?is)<meta[^>]+(?:name|property)=["'](?:og:)?description["'][^>]+content=["']([^"']+)["']`)
	rupeePriceRe  = pcre.MustCompile(`(?:₹|&#8377;|Rs\.?)\s*([\d,]+)`)
	tagStripRe    = pcre.MustCompile(`(?s)<[^>]+>`)
	whitespaceRe  = pcre.MustCompile(`\s+`)
	htmlEntityMap = strings.NewReplacer("&amp;", "&", "&quot;", `"`, "&#39;", "'", "&lt;", "<", "&gt;", ">", "&nbsp;", " ")
)

// Scraper fetches product pages and extracts drafts.
type Scraper struct {
	client *http.Client
	logger *slog.Logger
}

// New creates a Scraper with a bounded fetch timeout.
func New(timeout time.Duration, logger *slog.Logger) *Scraper {
	return &Scraper{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// DetectPlatform identifies the e-commerce platform from the URL.
func DetectPlatform(url string) string {
	lower := strings.ToLower(url)
	switch {
	case strings.Contains(lower, "amazon"):
		return events.PlatformAmazon
	case strings.Contains(lower, "flipkart"):
		return events.PlatformFlipkart
	case strings.Contains(lower, "myntra"):
		return events.PlatformMyntra
	case strings.Contains(lower, "ajio"):
		return events.PlatformAjio
	case strings.Contains(lower, "snapdeal"):
		return events.PlatformSnapdeal
	default:
		return events.PlatformOther
	}
}

// Scrape fetches url and extracts a product draft. Failures return the
// manual-entry fallback with FetchFailed set.
func (s *Scraper) Scrape(url string) *ProductDraft {
	platform := DetectPlatform(url)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		s.logger.Debug("Invalid scrape URL", slog.String("url", url), slog.Any("error", err))
		return fallbackDraft(url, platform)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Debug("Scrape fetch failed", slog.String("url", url), slog.Any("error", err))
		return fallbackDraft(url, platform)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Debug("Scrape fetch returned non-200",
			slog.String("url", url),
			slog.Int("status", resp.StatusCode))
		return fallbackDraft(url, platform)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		s.logger.Debug("Scrape body read failed", slog.String("url", url), slog.Any("error", err))
		return fallbackDraft(url, platform)
	}

	return Extract(string(body), url, platform)
}

// Extract pulls product metadata out of raw HTML.
func Extract(html, url, platform string) *ProductDraft {
	title := firstMatch(ogTitleRe, html)
	if title == "" {
		title = firstMatch(h1Re, html)
	}
	if title == "" {
		title = firstMatch(titleTagRe, html)
	}
	title = cleanText(title)
	if title == "" {
		title = "Product Title"
	}
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen]
	}

	image := firstMatch(ogImageRe, html)
	if image == "" {
		image = firstMatch(firstImageRe, html)
	}

	price := parsePrice(firstMatch(rupeePriceRe, html))

	description := cleanText(firstMatch(ogDescRe, html))
	if len(description) > maxDescriptionLen {
		description = description[:maxDescriptionLen] + "..."
	}
	if description == "" {
		description = "No description available"
	}

	return &ProductDraft{
		Title:         title,
		Image:         image,
		Price:         price,
		OriginalPrice: int(math.Round(float64(price) * 1.2)),
		Description:   description,
		Platform:      platform,
		AffiliateLink: url,
		Category:      "General",
	}
}

func fallbackDraft(url, platform string) *ProductDraft {
	return &ProductDraft{
		Title:         fmt.Sprintf("Product from %s", platform),
		Description:   "Unable to fetch product details. Please enter manually.",
		Platform:      platform,
		AffiliateLink: url,
		Category:      "General",
		FetchFailed:   true,
	}
}

func firstMatch(re *pcre.Regexp, html string) string {
	match := re.FindStringSubmatch(html)
	if len(match) < 2 {
		return ""
	}
	return match[1]
}

// cleanText strips nested tags, collapses whitespace and decodes the common
// HTML entities that show up in titles.
func cleanText(s string) string {
	s = tagStripRe.ReplaceAllString(s, " ")
	s = htmlEntityMap.Replace(s)
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func parsePrice(raw string) int {
	digits := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if digits == "" {
		return 0
	}
	price, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return price
}
