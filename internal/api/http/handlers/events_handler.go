package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/eventra/entrypass/internal/api/dto"
	"github.com/eventra/entrypass/internal/auth"
	"github.com/eventra/entrypass/internal/service"
	apperrors "github.com/eventra/entrypass/pkg/util"
)

// EventsHandler exposes the event directory.
type EventsHandler struct {
	directory *service.DirectoryService
}

// NewEventsHandler constructs handler.
func NewEventsHandler(directory *service.DirectoryService) *EventsHandler {
	return &EventsHandler{directory: directory}
}

// CreateEvent POST /events.
func (h *EventsHandler) CreateEvent(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	event, err := h.directory.CreateEvent(c.UserContext(), actor.ID, req.Name, req.StartsAt)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.EventView(event)})
}

// GetEvent GET /events/:id.
func (h *EventsHandler) GetEvent(c *fiber.Ctx) error {
	event, err := h.directory.GetEvent(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.EventView(event)})
}

// ListEvents GET /events.
func (h *EventsHandler) ListEvents(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	items, err := h.directory.ListOwnEvents(c.UserContext(), actor.ID, limit, offset)
	if err != nil {
		return err
	}
	views := make([]dto.EventResponse, 0, len(items))
	for i := range items {
		views = append(views, dto.EventView(&items[i]))
	}
	return c.JSON(fiber.Map{"data": views})
}
