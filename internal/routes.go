package internal

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	v1 "dealkart/api/v1"
	"dealkart/internal/http"
	"dealkart/internal/http/middleware"
)

// publicCORSConfig is the permissive CORS setup shared by all public
// endpoints; the tracking client posts cross-origin from the storefront.
var publicCORSConfig = cors.Config{
	AllowOrigins: "*",
	AllowMethods: "POST,GET,OPTIONS",
	AllowHeaders: "Origin, Content-Type, Accept, Authorization, Referrer, User-Agent",
}

// MountRoutes mounts all application routes.
func (a *Application) MountRoutes(app *fiber.App) {
	cfg := a.Config

	// Rate limiting is production-only; in development and test it would
	// interfere with seeding and integration runs.
	conditionalRateLimiter := func(max int) fiber.Handler {
		if !cfg.IsProduction() {
			return func(c *fiber.Ctx) error { return c.Next() }
		}
		return limiter.New(limiter.Config{
			Max:        max,
			Expiration: time.Minute,
		})
	}

	// 70/min per IP handles legitimate tracking traffic while capping abuse.
	publicRateLimiter := conditionalRateLimiter(70)
	// Stricter limit on login to slow brute-force attempts.
	authRateLimiter := conditionalRateLimiter(10)

	publicCORS := cors.New(publicCORSConfig)

	api := v1.NewAPI(a.EventLog, a.GeoResolver, a.Logger)
	h := http.NewHandler(cfg, a.DBManager.GetConnection(), a.EventLog, a.Scraper, a.Logger)
	requireAuth := middleware.RequireAuth(cfg, a.Logger)

	// === ROOT ROUTES ===
	app.Get("/_health", h.HealthIndexAction)
	app.Head("/_health", h.HealthIndexAction)

	// === PUBLIC API ROUTES ===
	public := app.Group("/x/api/v1", publicCORS, publicRateLimiter)
	public.Post("/visitors", api.CreateVisitorHandler)
	public.Post("/clicks", api.CreateClickHandler)
	public.Options("/visitors", noContent)
	public.Options("/clicks", noContent)

	// === STOREFRONT ROUTES ===
	app.Get("/api/v1/products", publicCORS, h.ProductsIndexAction)

	// === AUTHENTICATION ROUTES ===
	app.Post("/login", authRateLimiter, h.ProcessLoginAction)

	// === PROTECTED ADMIN ROUTES ===
	admin := app.Group("/admin/api", requireAuth)
	admin.Get("/auth/verify", h.VerifyTokenAction)
	admin.Get("/analytics", h.AnalyticsAction)
	admin.Post("/products", h.ProductCreateAction)
	admin.Put("/products/:id", h.ProductUpdateAction)
	admin.Delete("/products/:id", h.ProductDeleteAction)
	admin.Post("/scrape", h.ScrapeAction)
	admin.Post("/account/password", h.ChangePasswordAction)
}

func noContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
