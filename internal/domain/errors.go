package domain

import "errors"

var (
	// Issuance.
	ErrDuplicateTicket   = errors.New("ticket already exists for event and participant")
	ErrTokenCollision    = errors.New("token already in use")
	ErrIssuanceFailed    = errors.New("ticket issuance failed")
	ErrAlreadyRegistered = errors.New("participant already registered for event")

	// Redemption.
	ErrMalformedPayload    = errors.New("malformed ticket payload")
	ErrUnknownTicket       = errors.New("unknown ticket")
	ErrForbidden           = errors.New("not authorized to redeem for this event")
	ErrDuplicateRedemption = errors.New("ticket already redeemed")
	ErrWrongEvent          = errors.New("ticket belongs to a different event")

	// Directory.
	ErrEventNotFound = errors.New("event not found")
)
