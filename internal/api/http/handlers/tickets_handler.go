package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/eventra/entrypass/internal/api/dto"
	"github.com/eventra/entrypass/internal/auth"
	"github.com/eventra/entrypass/internal/domain"
	"github.com/eventra/entrypass/internal/service"
	apperrors "github.com/eventra/entrypass/pkg/util"
)

// TicketsHandler covers registration (issuance) and ticket retrieval.
type TicketsHandler struct {
	issuance  *service.IssuanceService
	directory *service.DirectoryService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(issuance *service.IssuanceService, directory *service.DirectoryService) *TicketsHandler {
	return &TicketsHandler{issuance: issuance, directory: directory}
}

// Register POST /events/:id/registrations. Participants register
// themselves; organizers and admins may register someone else, which still
// issues through the same path as self-registration.
func (h *TicketsHandler) Register(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	eventID := c.Params("id")

	var req dto.RegisterRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}

	participantID := actor.ID
	if req.ParticipantID != "" && req.ParticipantID != actor.ID {
		event, err := h.directory.GetEvent(c.UserContext(), eventID)
		if err != nil {
			return err
		}
		if !auth.CanRedeem(actor, event.OwnerID) {
			return apperrors.NewForbidden("only the event owner or an admin may add participants")
		}
		participantID = req.ParticipantID
	}

	ticket, err := h.issuance.Issue(c.UserContext(), eventID, participantID)
	if err != nil {
		return err
	}

	resp := dto.TicketView(ticket)
	resp.QRPayload = h.issuance.Payload(ticket)
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": resp})
}

// GetMyTicket GET /events/:id/tickets/me.
func (h *TicketsHandler) GetMyTicket(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	ticket, err := h.issuance.TicketFor(c.UserContext(), c.Params("id"), actor.ID)
	if err != nil {
		return err
	}

	resp := dto.TicketView(ticket)
	if ticket.State == domain.TicketStateIssued {
		resp.QRPayload = h.issuance.Payload(ticket)
	}
	return c.JSON(fiber.Map{"data": resp})
}
