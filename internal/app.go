// Package internal contains core application functionality
package internal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"dealkart/internal/config"
	"dealkart/internal/database"
	"dealkart/internal/eventlog"
	"dealkart/internal/logger"
	"dealkart/internal/pkg/geoip"
	"dealkart/internal/scraper"
)

// Application wires the service's components together.
type Application struct {
	Config      *config.Config
	Logger      *slog.Logger
	DBManager   *database.DBManager
	EventLog    eventlog.Log
	GeoResolver *geoip.Resolver
	Scraper     *scraper.Scraper

	fiber *fiber.App
}

// NewApp creates a new application instance with default settings
func NewApp() (*Application, error) {
	cfg := config.GetConfig()
	return NewAppWithConfig(cfg)
}

// NewAppWithConfig creates a new application with the provided config
func NewAppWithConfig(cfg *config.Config) (*Application, error) {
	log := logger.New(cfg)

	dbManager := database.NewDBManager(cfg, log)
	if err := dbManager.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	app := &Application{
		Config:    cfg,
		Logger:    log,
		DBManager: dbManager,
		EventLog:  eventlog.NewFileLog(cfg.EventLogName, log),
		GeoResolver: geoip.NewResolver(
			cfg.GeoDBPath,
			time.Duration(cfg.GeoLookupTimeoutSecs)*time.Second,
			log,
		),
		Scraper: scraper.New(time.Duration(cfg.ScrapeTimeoutSeconds)*time.Second, log),
	}

	app.fiber = fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		DisableStartupMessage: cfg.IsProduction(),
	})
	app.MountRoutes(app.fiber)

	return app, nil
}

// Start runs the HTTP server. It blocks until the server stops.
func (a *Application) Start() error {
	a.Logger.Info("Starting server",
		slog.String("port", a.Config.AppPort),
		slog.String("environment", a.Config.Environment))
	return a.fiber.Listen(":" + a.Config.AppPort)
}

// StartAsync runs the HTTP server in the background. Listen errors are
// logged; the caller shuts the process down via signal handling.
func (a *Application) StartAsync() {
	go func() {
		if err := a.Start(); err != nil {
			a.Logger.Error("Server stopped", slog.Any("error", err))
		}
	}()
}

// Shutdown stops the HTTP server and releases resources.
func (a *Application) Shutdown(ctx context.Context) error {
	if err := a.fiber.ShutdownWithContext(ctx); err != nil {
		return err
	}
	a.GeoResolver.Close()
	return a.DBManager.Close()
}

// Fiber exposes the underlying fiber app; used by tests.
func (a *Application) Fiber() *fiber.App {
	return a.fiber
}
