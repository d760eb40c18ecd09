package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"dealkart/internal/http/middleware"
	"dealkart/internal/users"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ProcessLoginAction verifies admin credentials and issues a Bearer token.
func (h *Handler) ProcessLoginAction(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request",
			"code":  "INVALID_REQUEST",
		})
	}

	user, err := users.Authenticate(h.db, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid credentials",
				"code":  "INVALID_CREDENTIALS",
			})
		}
		h.logger.Error("Login failed", slog.Any("error", err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Authentication failed",
			"code":  "INTERNAL_ERROR",
		})
	}

	token, err := middleware.GenerateToken(h.cfg, user.Email)
	if err != nil {
		h.logger.Error("Failed to sign login token", slog.Any("error", err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Authentication failed",
			"code":  "INTERNAL_ERROR",
		})
	}

	h.logger.Info("Admin logged in", slog.String("email", user.Email))
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"token":   token,
	})
}

// VerifyTokenAction lets the admin SPA check whether its stored token is
// still valid.
func (h *Handler) VerifyTokenAction(c *fiber.Ctx) error {
	email, _ := c.Locals(middleware.ContextKeyEmail).(string)
	if email == "" {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"valid": false})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"valid": true,
		"email": email,
	})
}

// ChangePasswordAction updates the authenticated admin's password after
// re-verifying the current one.
func (h *Handler) ChangePasswordAction(c *fiber.Ctx) error {
	email, _ := c.Locals(middleware.ContextKeyEmail).(string)

	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request",
			"code":  "INVALID_REQUEST",
		})
	}

	if err := users.ChangePassword(h.db, email, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
				"error": "Current password is incorrect",
				"code":  "INVALID_CREDENTIALS",
			})
		}
		h.logger.Error("Failed to change password", slog.String("email", email), slog.Any("error", err))
		return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "VALIDATION_ERROR",
		})
	}

	h.logger.Info("Admin password changed", slog.String("email", email))
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Credentials updated successfully",
	})
}
