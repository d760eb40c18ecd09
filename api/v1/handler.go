// Package v1 exposes the public event ingestion API consumed by the
// storefront tracking client.
package v1

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"dealkart/internal/eventlog"
	"dealkart/internal/events"
	"dealkart/internal/pkg/geoip"
)

const msgEventAdded = "Event added successfully"

// API holds the dependencies for the ingestion handlers.
type API struct {
	log      eventlog.Log
	resolver *geoip.Resolver
	logger   *slog.Logger
}

// NewAPI creates the ingestion API.
func NewAPI(log eventlog.Log, resolver *geoip.Resolver, logger *slog.Logger) *API {
	return &API{log: log, resolver: resolver, logger: logger}
}

// CreateVisitorHandler records a page view. Analytics are best-effort
// telemetry: the response is always 202 and failures are only logged, so a
// storage hiccup never breaks the storefront.
func (a *API) CreateVisitorHandler(c *fiber.Ctx) error {
	var input events.CollectVisitorInput
	if err := c.BodyParser(&input); err != nil {
		a.logger.Debug("Failed to parse visitor event request", slog.Any("error", err))
		return accepted(c)
	}

	input.IPAddress = getClientIP(c)

	var resolver events.LocationResolver
	if a.resolver != nil {
		resolver = a.resolver
	}
	if err := events.CollectVisitor(a.log, resolver, a.logger, &input); err != nil {
		a.logger.Error("Failed to collect visitor event", slog.Any("error", err))
	}

	return accepted(c)
}

// CreateClickHandler records an affiliate-link activation. Same best-effort
// contract as CreateVisitorHandler.
func (a *API) CreateClickHandler(c *fiber.Ctx) error {
	var input events.CollectClickInput
	if err := c.BodyParser(&input); err != nil {
		a.logger.Debug("Failed to parse click event request", slog.Any("error", err))
		return accepted(c)
	}

	input.IPAddress = getClientIP(c)

	if err := events.CollectClick(a.log, a.logger, &input); err != nil {
		a.logger.Error("Failed to collect click event", slog.Any("error", err))
	}

	return accepted(c)
}

func accepted(c *fiber.Ctx) error {
	return c.Status(http.StatusAccepted).JSON(fiber.Map{
		"message": msgEventAdded,
		"status":  http.StatusAccepted,
	})
}
