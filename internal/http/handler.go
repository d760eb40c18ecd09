// Package http holds the admin console and storefront HTTP handlers.
package http

import (
	"log/slog"

	"gorm.io/gorm"

	"dealkart/internal/config"
	"dealkart/internal/eventlog"
	"dealkart/internal/scraper"
)

// Handler bundles the dependencies shared by the admin and storefront
// endpoints.
type Handler struct {
	cfg     *config.Config
	db      *gorm.DB
	log     eventlog.Log
	scraper *scraper.Scraper
	logger  *slog.Logger
}

// NewHandler creates the handler set.
func NewHandler(cfg *config.Config, db *gorm.DB, log eventlog.Log, s *scraper.Scraper, logger *slog.Logger) *Handler {
	return &Handler{
		cfg:     cfg,
		db:      db,
		log:     log,
		scraper: s,
		logger:  logger,
	}
}
