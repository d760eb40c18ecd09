package http

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthIndexAction reports liveness.
func (h *Handler) HealthIndexAction(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
