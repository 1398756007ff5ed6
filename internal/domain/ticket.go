package domain

import "time"

// TicketState enumerates lifecycle states for entry tickets.
type TicketState string

const (
	TicketStateIssued   TicketState = "ISSUED"
	TicketStateRedeemed TicketState = "REDEEMED"
)

// Ticket is the durable record authorizing one participant's entry to one
// event. The only legal transition is ISSUED -> REDEEMED; REDEEMED is
// terminal. ID, EventID, ParticipantID, Token and IssuedAt are immutable
// after creation.
type Ticket struct {
	ID            string
	EventID       string
	ParticipantID string
	Token         string
	State         TicketState
	IssuedAt      time.Time
	RedeemedAt    *time.Time
}

// Redeemed reports whether the ticket has reached its terminal state.
func (t *Ticket) Redeemed() bool {
	return t.State == TicketStateRedeemed
}

// RedemptionStatus classifies the outcome of a single TryRedeem attempt.
type RedemptionStatus string

const (
	RedemptionSuccess         RedemptionStatus = "SUCCESS"
	RedemptionAlreadyRedeemed RedemptionStatus = "ALREADY_REDEEMED"
	RedemptionEventMismatch   RedemptionStatus = "EVENT_MISMATCH"
	RedemptionNotFound        RedemptionStatus = "NOT_FOUND"
)

// RedemptionResult is reported by the ticket store's conditional update.
// Ticket is nil only when Status is RedemptionNotFound.
type RedemptionResult struct {
	Status RedemptionStatus
	Ticket *Ticket
}
