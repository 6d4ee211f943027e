package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/athlete-assessment-api/internal/config"
	"github.com/noah-isme/athlete-assessment-api/internal/handler"
	"github.com/noah-isme/athlete-assessment-api/internal/middleware"
	"github.com/noah-isme/athlete-assessment-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AssessmentHandler *handler.AssessmentHandler
	GovernanceHandler *handler.GovernanceHandler
	JWTMiddleware     fiber.Handler
	HealthProbes      map[string]handler.HealthProbe
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AssessmentHandler != nil {
		assessments := api.Group("/assessments", jwtMiddleware, middleware.RequireRole(middleware.RoleAdmin, middleware.RoleAssessor))
		deps.AssessmentHandler.Register(assessments)
	}

	if deps.GovernanceHandler != nil {
		governance := api.Group("/governance", jwtMiddleware, middleware.RequireRole(middleware.RoleAdmin))
		window := cfg.GovernanceRateWindow
		if window <= 0 {
			window = time.Minute
		}
		deps.GovernanceHandler.Register(governance, middleware.RateLimit("governance", cfg.GovernanceRateLimit, window))
	}
}
