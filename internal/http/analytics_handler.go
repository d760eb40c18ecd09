package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"dealkart/internal/analytics"
)

// AnalyticsAction serves the dashboard read-model. Query params: days
// (positive integer, default 30) and visitors (boolean, default false). An
// empty or unreadable event log yields the all-zero read-model, never an
// error.
func (h *Handler) AnalyticsAction(c *fiber.Ctx) error {
	days := c.QueryInt("days", analytics.DefaultWindowDays)
	if days < 1 {
		days = analytics.DefaultWindowDays
	}
	includeVisitors := c.QueryBool("visitors", false)

	model := analytics.Query(h.log, h.logger, analytics.QueryParams{
		WindowDays:      days,
		IncludeVisitors: includeVisitors,
	})

	return c.Status(http.StatusOK).JSON(model)
}
