package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-bot/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Webhook *handlers.WebhookHandler
}

// RegisterRoutes wires HTTP routes. The webhook route is registered only
// when webhook mode is enabled.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	if cfg.Webhook != nil {
		app.Post("/telegram/webhook", cfg.Webhook.Receive)
	}
}
