package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"

	"github.com/samirrijal/demfetch/internal/pkg/metrics"
)

// SetupRoutes registers the map page, REST, and GraphQL routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(SessionMiddleware())
	app.Use(AccessLogMiddleware())

	// 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	rt := deps.requestTimeout()
	v1 := app.Group("/v1")
	v1.Post("/selection/manual", timeout.NewWithContext(SelectManualHandler(deps), rt))
	v1.Post("/selection/drawn", timeout.NewWithContext(SelectDrawnHandler(deps), rt))
	v1.Get("/selection", timeout.NewWithContext(GetSelectionHandler(deps), rt))
	v1.Delete("/selection", timeout.NewWithContext(ClearSelectionHandler(deps), rt))
	v1.Get("/selection.kml", timeout.NewWithContext(SelectionKMLHandler(deps), rt))
	v1.Get("/raster", RasterHandler(deps))

	// The upstream call has its own deadline; the route timeout only
	// bounds the whole request.
	v1.Post("/downloads", timeout.NewWithContext(DownloadHandler(deps), deps.downloadTimeout()))

	app.Post("/graphql", timeout.NewWithContext(GraphQLHandler(deps), deps.downloadTimeout()))

	// Map page and API documentation
	SetupDocs(app)
}
