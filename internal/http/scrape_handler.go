package http

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type scrapeRequest struct {
	URL string `json:"url"`
}

// ScrapeAction fetches an e-commerce URL and returns a pre-filled product
// draft for the admin form. Extraction failures come back as a fallback
// draft with fetchFailed set, never as an error response.
func (h *Handler) ScrapeAction(c *fiber.Ctx) error {
	var req scrapeRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "URL is required",
			"code":  "INVALID_REQUEST",
		})
	}

	draft := h.scraper.Scrape(strings.TrimSpace(req.URL))
	return c.Status(http.StatusOK).JSON(draft)
}
