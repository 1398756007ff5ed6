package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventra/entrypass/internal/domain"
	"github.com/eventra/entrypass/internal/events"
	"github.com/eventra/entrypass/internal/observability"
	"github.com/eventra/entrypass/internal/qr"
	"github.com/eventra/entrypass/internal/repository"
)

const defaultMintRetries = 5

// IssuanceService turns an accepted registration into exactly one ticket.
// Every registration path, including participants added by organizers,
// goes through Issue; there is no second way to obtain a redeemable token.
type IssuanceService struct {
	tickets     repository.TicketRepository
	directory   repository.EventRepository
	codec       *qr.Codec
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
	mintRetries int
}

// IssuanceDependencies bundles collaborators for the issuance service.
type IssuanceDependencies struct {
	TicketRepo  repository.TicketRepository
	EventRepo   repository.EventRepository
	Codec       *qr.Codec
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	MintRetries int
}

// NewIssuanceService constructs the service.
func NewIssuanceService(deps IssuanceDependencies) *IssuanceService {
	retries := deps.MintRetries
	if retries <= 0 {
		retries = defaultMintRetries
	}
	return &IssuanceService{
		tickets:     deps.TicketRepo,
		directory:   deps.EventRepo,
		codec:       deps.Codec,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
		mintRetries: retries,
	}
}

// Issue creates the ticket for (eventID, participantID). Token collisions
// are absorbed by re-minting up to the retry bound; a duplicate
// registration surfaces as ErrAlreadyRegistered for the caller to show the
// end user.
func (s *IssuanceService) Issue(ctx context.Context, eventID, participantID string) (*domain.Ticket, error) {
	if _, err := s.directory.GetByID(ctx, eventID); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= s.mintRetries; attempt++ {
		token, err := s.codec.Mint()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrIssuanceFailed, err)
		}

		ticket := &domain.Ticket{
			ID:            uuid.NewString(),
			EventID:       eventID,
			ParticipantID: participantID,
			Token:         token,
		}

		err = s.tickets.Create(ctx, ticket)
		switch {
		case err == nil:
			s.metrics.RecordIssued()
			s.publish(ctx, events.Event{
				Type:      events.EventTicketIssued,
				TicketID:  ticket.ID,
				Timestamp: time.Now().UTC(),
				Payload: events.TicketIssuedPayload{
					EventID:       ticket.EventID,
					ParticipantID: ticket.ParticipantID,
				},
			})
			return ticket, nil
		case errors.Is(err, domain.ErrDuplicateTicket):
			return nil, domain.ErrAlreadyRegistered
		case errors.Is(err, domain.ErrTokenCollision):
			s.logger.Warn("token collision, re-minting",
				zap.String("event_id", eventID),
				zap.Int("attempt", attempt))
		default:
			return nil, err
		}
	}

	s.logger.Error("issuance failed after retries",
		zap.String("event_id", eventID),
		zap.String("participant_id", participantID),
		zap.Int("retries", s.mintRetries))
	return nil, domain.ErrIssuanceFailed
}

// TicketFor returns the existing ticket for a registration, if any.
func (s *IssuanceService) TicketFor(ctx context.Context, eventID, participantID string) (*domain.Ticket, error) {
	return s.tickets.FindByEventAndParticipant(ctx, eventID, participantID)
}

// Payload renders the QR payload for an issued ticket.
func (s *IssuanceService) Payload(ticket *domain.Ticket) string {
	return s.codec.EncodeForDisplay(ticket.Token, ticket.EventID, ticket.ParticipantID)
}

func (s *IssuanceService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
