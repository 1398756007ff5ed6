package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/eventra/entrypass/internal/api/http/handlers"
	"github.com/eventra/entrypass/internal/auth"
	"github.com/eventra/entrypass/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Events         *handlers.EventsHandler
	Tickets        *handlers.TicketsHandler
	Scan           *handlers.ScanHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	protected := app.Group("", cfg.AuthMiddleware.Handle)

	eventsGroup := protected.Group("/events")
	eventsGroup.Post("", auth.RequireRole(domain.RoleOrganizer, domain.RoleAdmin), cfg.Events.CreateEvent)
	eventsGroup.Get("", cfg.Events.ListEvents)
	eventsGroup.Get("/:id", cfg.Events.GetEvent)
	eventsGroup.Post("/:id/registrations", cfg.Tickets.Register)
	eventsGroup.Get("/:id/tickets/me", cfg.Tickets.GetMyTicket)

	protected.Post("/scan", auth.RequireRole(domain.RoleOrganizer, domain.RoleAdmin), cfg.Scan.Scan)
}
