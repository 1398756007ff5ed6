package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/eventra/entrypass/internal/api/dto"
	"github.com/eventra/entrypass/internal/auth"
	"github.com/eventra/entrypass/internal/domain"
	"github.com/eventra/entrypass/internal/service"
	apperrors "github.com/eventra/entrypass/pkg/util"
)

// ScanHandler is the gate-side surface: one scan attempt in, one verdict
// out.
type ScanHandler struct {
	redemption *service.RedemptionService
}

// NewScanHandler constructs handler.
func NewScanHandler(redemption *service.RedemptionService) *ScanHandler {
	return &ScanHandler{redemption: redemption}
}

// Scan POST /scan.
func (h *ScanHandler) Scan(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ScanRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.EventID == "" || req.Payload == "" {
		return apperrors.NewValidationError("event_id and payload required", nil)
	}

	ticket, err := h.redemption.Redeem(c.UserContext(), actor, req.EventID, req.Payload)
	if err != nil {
		var dup *domain.DuplicateRedemptionError
		if errors.As(err, &dup) {
			return apperrors.NewDomainError(
				"DUPLICATE_REDEMPTION",
				fmt.Sprintf("Already used at %s", dup.RedeemedAt.Format("15:04")),
				http.StatusConflict,
				map[string]any{
					"ticket_id":   dup.TicketID,
					"redeemed_at": dup.RedeemedAt.Format(time.RFC3339),
				},
			)
		}
		return err
	}

	var redeemedAt time.Time
	if ticket.RedeemedAt != nil {
		redeemedAt = *ticket.RedeemedAt
	}
	return c.JSON(fiber.Map{"data": dto.ScanResponse{
		Status:        "accepted",
		TicketID:      ticket.ID,
		EventID:       ticket.EventID,
		ParticipantID: ticket.ParticipantID,
		RedeemedAt:    redeemedAt,
	}})
}
