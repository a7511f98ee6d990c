package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-retriage/internal/api/http/handlers"
	"github.com/spec-kit/ticket-retriage/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Portal         *handlers.PortalHandler
	Retriage       *handlers.RetriageHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/", cfg.Portal.Index)

	api := app.Group("/api/v1")
	api.Get("/labels", cfg.Retriage.Labels)
	api.Get("/examples", cfg.Retriage.Examples)
	api.Post("/retriage", cfg.Retriage.Retriage)
	api.Post("/examples/:id/retriage", cfg.Retriage.RetriageExample)

	admin := api.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(auth.RoleAdmin))
	admin.Post("/reload", cfg.Admin.Reload)
	admin.Get("/audit", cfg.Admin.Audit)
	admin.Get("/stats", cfg.Admin.Stats)
}
