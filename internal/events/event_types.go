package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketIssued   EventType = "ticket_issued"
	EventTicketRedeemed EventType = "ticket_redeemed"
)

// Event represents a domain event emitted by services after a durable
// transition. Handlers run outside the transactional core.
type Event struct {
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketIssuedPayload payload.
type TicketIssuedPayload struct {
	EventID       string `json:"event_id"`
	ParticipantID string `json:"participant_id"`
}

// TicketRedeemedPayload payload.
type TicketRedeemedPayload struct {
	EventID       string    `json:"event_id"`
	ParticipantID string    `json:"participant_id"`
	RedeemedBy    string    `json:"redeemed_by"`
	RedeemedAt    time.Time `json:"redeemed_at"`
}
