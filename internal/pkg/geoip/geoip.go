// Package geoip resolves best-effort visitor locations at ingest time.
//
// Resolution order: local GeoLite2 City database when configured, then the
// ip-api.com JSON endpoint with a bounded timeout. Private and loopback
// addresses short-circuit to the local sentinel. Every failure degrades to
// the sentinel as well - a geolocation problem must never block or fail an
// event write.
package geoip

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/oschwald/geoip2-golang"
	"github.com/pariz/gountries"
	gocache "github.com/patrickmn/go-cache"

	"dealkart/internal/events"
)

const (
	cacheTTL     = 24 * time.Hour
	cacheCleanup = time.Hour
)

// Resolver looks up locations for client IPs.
type Resolver struct {
	db        *geoip2.Reader
	countries *gountries.Query
	cache     *gocache.Cache
	client    *http.Client
	logger    *slog.Logger
}

// NewResolver creates a Resolver. dbPath may point at a GeoLite2 City
// database; if the file is missing or unreadable the resolver falls back to
// the remote lookup (GeoIP data is optional).
func NewResolver(dbPath string, lookupTimeout time.Duration, logger *slog.Logger) *Resolver {
	r := &Resolver{
		countries: gountries.New(),
		cache:     gocache.New(cacheTTL, cacheCleanup),
		client:    &http.Client{Timeout: lookupTimeout},
		logger:    logger,
	}

	if dbPath == "" {
		logger.Debug("GeoIP database path not configured - using remote lookups only")
		return r
	}

	if _, err := os.Stat(dbPath); err != nil {
		logger.Info("GeoLite2 database not found - using remote lookups only",
			slog.String("path", dbPath),
			slog.String("hint", "Download from https://www.maxmind.com/en/geolite2/signup"))
		return r
	}

	db, err := geoip2.Open(dbPath)
	if err != nil {
		logger.Error("Failed to open GeoLite2 database",
			slog.String("path", dbPath),
			slog.Any("error", err))
		return r
	}

	logger.Info("GeoLite2 database initialized successfully", slog.String("path", dbPath))
	r.db = db
	return r
}

// Close releases the GeoLite2 reader if one is open.
func (r *Resolver) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

// Resolve returns the location for ip. Private, loopback and unparseable
// addresses, and any lookup failure, resolve to the local sentinel.
func (r *Resolver) Resolve(ip string) *events.Location {
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() {
		return events.LocalLocation()
	}

	if cached, found := r.cache.Get(ip); found {
		return cached.(*events.Location)
	}

	location := r.lookupLocal(parsed)
	if location == nil {
		location = r.lookupRemote(ip)
	}
	if location == nil {
		location = events.LocalLocation()
	}

	r.cache.Set(ip, location, gocache.DefaultExpiration)
	return location
}

func (r *Resolver) lookupLocal(ip net.IP) *events.Location {
	if r.db == nil {
		return nil
	}

	record, err := r.db.City(ip)
	if err != nil {
		r.logger.Debug("GeoLite2 lookup failed", slog.String("ip", ip.String()), slog.Any("error", err))
		return nil
	}

	code := record.Country.IsoCode
	if code == "" {
		return nil
	}

	location := &events.Location{
		City:        record.City.Names["en"],
		Country:     r.countryName(code),
		CountryCode: code,
	}
	if len(record.Subdivisions) > 0 {
		location.Region = record.Subdivisions[0].Names["en"]
	}
	if location.City == "" {
		location.City = events.UnknownCountry
	}
	return location
}

// ipAPIResponse mirrors the fields requested from ip-api.com.
type ipAPIResponse struct {
	Status      string `json:"status"`
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
	RegionName  string `json:"regionName"`
	City        string `json:"city"`
	ISP         string `json:"isp"`
}

func (r *Resolver) lookupRemote(ip string) *events.Location {
	url := fmt.Sprintf("http://ip-api.com/json/%s?fields=status,country,countryCode,regionName,city,isp", ip)

	resp, err := r.client.Get(url)
	if err != nil {
		r.logger.Debug("Remote geolocation lookup failed", slog.String("ip", ip), slog.Any("error", err))
		return nil
	}
	defer resp.Body.Close()

	var payload ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		r.logger.Debug("Failed to decode geolocation response", slog.String("ip", ip), slog.Any("error", err))
		return nil
	}
	if payload.Status != "success" {
		return nil
	}

	location := &events.Location{
		City:        payload.City,
		Country:     payload.Country,
		CountryCode: payload.CountryCode,
		Region:      payload.RegionName,
		ISP:         payload.ISP,
	}
	if location.City == "" {
		location.City = events.UnknownCountry
	}
	if location.Country == "" {
		location.Country = events.UnknownCountry
	}
	return location
}

// countryName resolves an ISO alpha-2 code to its common name, falling back
// to the code itself.
func (r *Resolver) countryName(code string) string {
	country, err := r.countries.FindCountryByAlpha(code)
	if err != nil {
		return code
	}
	return country.Name.Common
}
