// Package middleware holds the HTTP middleware for the admin API.
package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"dealkart/internal/config"
)

// ContextKeyEmail is the fiber locals key holding the authenticated admin
// email after RequireAuth has run.
const ContextKeyEmail = "admin_email"

var errMissingSubject = errors.New("token has no subject")

// GenerateToken issues a signed admin token for the given email.
func GenerateToken(cfg *config.Config, email string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": email,
		"iat": now.Unix(),
		"exp": now.Add(time.Duration(cfg.GetLoginTokenTTLSeconds()) * time.Second).Unix(),
		"iss": cfg.AppName,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.PrivateKey))
}

// ParseToken validates a token string and returns the admin email it was
// issued for.
func ParseToken(cfg *config.Config, tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(cfg.PrivateKey), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithIssuer(cfg.AppName))
	if err != nil {
		return "", err
	}

	subject, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if subject == "" {
		return "", errMissingSubject
	}
	return subject, nil
}

// RequireAuth guards admin routes with a Bearer token check.
func RequireAuth(cfg *config.Config, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authorization token",
				"code":  "UNAUTHORIZED",
			})
		}

		email, err := ParseToken(cfg, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			logger.Debug("Rejected admin token", slog.Any("error", err))
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
				"code":  "UNAUTHORIZED",
			})
		}

		c.Locals(ContextKeyEmail, email)
		return c.Next()
	}
}
