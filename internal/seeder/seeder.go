// Package seeder populates the catalog and event log with demo data for
// local development.
package seeder

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dealkart/internal/eventlog"
	"dealkart/internal/events"
	"dealkart/internal/products"
)

const (
	seedDays           = 30
	maxSessionsPerDay  = 8
	maxViewsPerSession = 5
	clickChancePercent = 30
)

var demoProducts = []products.Product{
	{Title: "Wireless Noise Cancelling Headphones", Price: 7999, OriginalPrice: 12999, Platform: events.PlatformAmazon, Category: "Electronics", AffiliateLink: "https://www.amazon.in/dp/B0DEMO0001?tag=dealkart-21"},
	{Title: "Men's Running Shoes", Price: 2499, OriginalPrice: 4199, Platform: events.PlatformFlipkart, Category: "Fashion", AffiliateLink: "https://www.flipkart.com/demo-shoes/p/itmdemo0002?affid=dealkart"},
	{Title: "Cotton Kurta Set", Price: 1299, OriginalPrice: 2599, Platform: events.PlatformMyntra, Category: "Fashion", AffiliateLink: "https://www.myntra.com/demo-kurta-0003?utm_source=dealkart"},
	{Title: "Stainless Steel Water Bottle 1L", Price: 499, OriginalPrice: 899, Platform: events.PlatformAmazon, Category: "Home", AffiliateLink: "https://www.amazon.in/dp/B0DEMO0004?tag=dealkart-21"},
	{Title: "Smart Fitness Band", Price: 1999, OriginalPrice: 3499, Platform: events.PlatformFlipkart, Category: "Electronics", AffiliateLink: "https://www.flipkart.com/demo-band/p/itmdemo0005?affid=dealkart"},
	{Title: "Analog Wrist Watch", Price: 3499, OriginalPrice: 5999, Platform: events.PlatformAjio, Category: "Accessories", AffiliateLink: "https://www.ajio.com/demo-watch-0006?utm_source=dealkart"},
}

var demoPages = []string{"/", "/products", "/product/%s", "/products?category=Electronics", "/products?category=Fashion"}

var demoReferrers = []string{"", "", "Google", "Instagram", "WhatsApp", "Telegram"}

var demoDevices = []string{"Desktop", "Mobile", "Mobile", "Tablet"}

var demoBrowsers = []string{"Chrome", "Chrome", "Safari", "Firefox", "Edge"}

var demoCountries = []events.Location{
	{City: "Mumbai", Country: "India", CountryCode: "IN", Region: "Maharashtra"},
	{City: "Bengaluru", Country: "India", CountryCode: "IN", Region: "Karnataka"},
	{City: "Delhi", Country: "India", CountryCode: "IN", Region: "Delhi"},
	{City: "Dubai", Country: "United Arab Emirates", CountryCode: "AE"},
	{City: "Singapore", Country: "Singapore", CountryCode: "SG"},
}

// Seed creates the demo catalog and a month of demo traffic. Existing
// products are kept; events are appended to whatever log is present.
func Seed(db *gorm.DB, log eventlog.Log, logger *slog.Logger) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	seeded, err := seedProducts(db, logger)
	if err != nil {
		return err
	}

	if err := seedTraffic(log, seeded, rng); err != nil {
		return err
	}

	logger.Info("Seed completed", slog.Int("products", len(seeded)))
	return nil
}

func seedProducts(db *gorm.DB, logger *slog.Logger) ([]products.Product, error) {
	existing, err := products.List(db)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if len(existing) > 0 {
		logger.Info("Catalog already has products, skipping product seed",
			slog.Int("count", len(existing)))
		return existing, nil
	}

	seeded := make([]products.Product, 0, len(demoProducts))
	for _, p := range demoProducts {
		product := p
		product.Description = fmt.Sprintf("%s at a limited-time price on %s.", product.Title, product.Platform)
		if err := products.Create(db, &product); err != nil {
			return nil, fmt.Errorf("failed to seed product %q: %w", product.Title, err)
		}
		seeded = append(seeded, product)
	}
	return seeded, nil
}

func seedTraffic(log eventlog.Log, catalog []products.Product, rng *rand.Rand) error {
	now := time.Now().UTC()

	for day := seedDays - 1; day >= 0; day-- {
		sessions := 1 + rng.Intn(maxSessionsPerDay)
		for s := 0; s < sessions; s++ {
			sessionID := uuid.NewString()
			location := demoCountries[rng.Intn(len(demoCountries))]
			device := demoDevices[rng.Intn(len(demoDevices))]
			browser := demoBrowsers[rng.Intn(len(demoBrowsers))]
			referrer := demoReferrers[rng.Intn(len(demoReferrers))]

			base := now.Add(-time.Duration(day) * 24 * time.Hour).
				Add(-time.Duration(rng.Intn(12)) * time.Hour)

			views := 1 + rng.Intn(maxViewsPerSession)
			for v := 0; v < views; v++ {
				page := demoPages[rng.Intn(len(demoPages))]
				if page == "/product/%s" && len(catalog) > 0 {
					page = fmt.Sprintf("/product/%s", catalog[rng.Intn(len(catalog))].ID)
				}

				err := log.AppendVisitor(events.VisitorEvent{
					SessionID: sessionID,
					Timestamp: base.Add(time.Duration(v) * time.Minute),
					Page:      page,
					Referrer:  referrer,
					Device:    device,
					Browser:   browser,
					OS:        "Android",
					Language:  "English",
					Timezone:  "Asia/Kolkata",
					IP:        events.LocalhostIP,
					Location:  &location,
				})
				if err != nil {
					return fmt.Errorf("failed to seed visitor event: %w", err)
				}
			}

			if len(catalog) > 0 && rng.Intn(100) < clickChancePercent {
				product := catalog[rng.Intn(len(catalog))]
				err := log.AppendClick(events.ClickEvent{
					SessionID:    sessionID,
					Timestamp:    base.Add(time.Duration(views) * time.Minute),
					ProductID:    product.ID,
					ProductTitle: product.Title,
					Platform:     product.Platform,
					Price:        product.Price,
					IP:           events.LocalhostIP,
				})
				if err != nil {
					return fmt.Errorf("failed to seed click event: %w", err)
				}
			}
		}
	}
	return nil
}
