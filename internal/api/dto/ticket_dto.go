package dto

import (
	"time"

	"github.com/eventra/entrypass/internal/domain"
)

// RegisterRequest registers a participant for an event. ParticipantID is
// only honored for organizer/admin callers adding someone else; participants
// registering themselves are identified by their bearer token.
type RegisterRequest struct {
	ParticipantID string `json:"participant_id,omitempty"`
}

// TicketResponse is the issued ticket plus its QR payload.
type TicketResponse struct {
	ID            string             `json:"id"`
	EventID       string             `json:"event_id"`
	ParticipantID string             `json:"participant_id"`
	State         domain.TicketState `json:"state"`
	IssuedAt      time.Time          `json:"issued_at"`
	RedeemedAt    *time.Time         `json:"redeemed_at,omitempty"`
	QRPayload     string             `json:"qr_payload,omitempty"`
}

// ScanRequest carries one scan attempt: the payload read from the QR code
// and the event the operator is scanning for.
type ScanRequest struct {
	EventID string `json:"event_id"`
	Payload string `json:"payload"`
}

// ScanResponse reports an accepted redemption.
type ScanResponse struct {
	Status        string    `json:"status"`
	TicketID      string    `json:"ticket_id"`
	EventID       string    `json:"event_id"`
	ParticipantID string    `json:"participant_id"`
	RedeemedAt    time.Time `json:"redeemed_at"`
}

// TicketView maps a domain ticket without its payload.
func TicketView(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:            ticket.ID,
		EventID:       ticket.EventID,
		ParticipantID: ticket.ParticipantID,
		State:         ticket.State,
		IssuedAt:      ticket.IssuedAt,
		RedeemedAt:    ticket.RedeemedAt,
	}
}
