package geoip

import (
	"io"
	"log/slog"
	"testing"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealkart/internal/events"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	r := NewResolver("", time.Second, newTestLogger())
	t.Cleanup(r.Close)
	return r
}

func TestNewResolverWithoutDatabase(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		r := NewResolver("", time.Second, newTestLogger())
		require.NotNil(t, r)
		r.Close()
	})

	t.Run("missing file", func(t *testing.T) {
		r := NewResolver("/nonexistent/GeoLite2-City.mmdb", time.Second, newTestLogger())
		require.NotNil(t, r)
		r.Close()
	})
}

func TestResolveLocalAddresses(t *testing.T) {
	r := newTestResolver(t)

	for _, ip := range []string{
		"127.0.0.1",
		"::1",
		"10.0.0.5",
		"192.168.1.10",
		"172.16.0.1",
		"0.0.0.0",
		"not-an-ip",
		"",
	} {
		location := r.Resolve(ip)
		require.NotNil(t, location, "ip: %q", ip)
		assert.Equal(t, events.LocalLocation(), location, "ip: %q", ip)
	}
}

func TestResolveUsesCache(t *testing.T) {
	r := newTestResolver(t)

	cached := &events.Location{City: "Mumbai", Country: "India", CountryCode: "IN"}
	r.cache.Set("203.0.113.5", cached, gocache.DefaultExpiration)

	location := r.Resolve("203.0.113.5")
	assert.Same(t, cached, location)
}

func TestCountryName(t *testing.T) {
	r := newTestResolver(t)

	assert.Equal(t, "India", r.countryName("IN"))
	assert.Equal(t, "United States", r.countryName("US"))
	// Unknown codes fall back to the code itself.
	assert.Equal(t, "ZZ", r.countryName("ZZ"))
}
