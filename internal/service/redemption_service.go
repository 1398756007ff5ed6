package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/eventra/entrypass/internal/auth"
	"github.com/eventra/entrypass/internal/domain"
	"github.com/eventra/entrypass/internal/events"
	"github.com/eventra/entrypass/internal/observability"
	"github.com/eventra/entrypass/internal/qr"
	"github.com/eventra/entrypass/internal/repository"
)

// RedemptionService is the state machine driving ISSUED -> REDEEMED. It is
// stateless per call; the one durable mutation happens inside
// TicketRepository.TryRedeem, after authorization has passed. No retries:
// every failure is a fact the operator must see verbatim.
type RedemptionService struct {
	tickets    repository.TicketRepository
	directory  repository.EventRepository
	codec      *qr.Codec
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// RedemptionDependencies bundles collaborators for the redemption service.
type RedemptionDependencies struct {
	TicketRepo repository.TicketRepository
	EventRepo  repository.EventRepository
	Codec      *qr.Codec
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewRedemptionService constructs the service.
func NewRedemptionService(deps RedemptionDependencies) *RedemptionService {
	return &RedemptionService{
		tickets:    deps.TicketRepo,
		directory:  deps.EventRepo,
		codec:      deps.Codec,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// Redeem runs one scan attempt for the operator's selected event. eventID
// comes from the operator, never from the scanned payload: payload hints
// are display-only and carry no authority.
func (s *RedemptionService) Redeem(ctx context.Context, actor *domain.Actor, eventID, payload string) (*domain.Ticket, error) {
	decoded, err := s.codec.Decode(payload)
	if err != nil {
		return nil, err
	}

	ticket, err := s.tickets.FindByToken(ctx, decoded.Token)
	if err != nil {
		return nil, err
	}

	event, err := s.directory.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !auth.CanRedeem(actor, event.OwnerID) {
		actorID := ""
		if actor != nil {
			actorID = actor.ID
		}
		s.logger.Warn("redemption forbidden",
			zap.String("actor_id", actorID),
			zap.String("event_id", eventID),
			zap.String("ticket_id", ticket.ID))
		return nil, domain.ErrForbidden
	}

	result, err := s.tickets.TryRedeem(ctx, decoded.Token, eventID)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordScan(result.Status)

	switch result.Status {
	case domain.RedemptionSuccess:
		redeemed := result.Ticket
		s.logger.Info("ticket redeemed",
			zap.String("ticket_id", redeemed.ID),
			zap.String("event_id", redeemed.EventID),
			zap.String("redeemed_by", actor.ID))
		s.publishRedeemed(ctx, redeemed, actor)
		return redeemed, nil
	case domain.RedemptionAlreadyRedeemed:
		used := result.Ticket
		var at time.Time
		if used.RedeemedAt != nil {
			at = *used.RedeemedAt
		}
		return nil, &domain.DuplicateRedemptionError{TicketID: used.ID, RedeemedAt: at}
	case domain.RedemptionEventMismatch:
		return nil, domain.ErrWrongEvent
	default:
		return nil, domain.ErrUnknownTicket
	}
}

func (s *RedemptionService) publishRedeemed(ctx context.Context, ticket *domain.Ticket, actor *domain.Actor) {
	if s.dispatcher == nil {
		return
	}
	var at time.Time
	if ticket.RedeemedAt != nil {
		at = *ticket.RedeemedAt
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		Type:      events.EventTicketRedeemed,
		TicketID:  ticket.ID,
		Timestamp: time.Now().UTC(),
		Payload: events.TicketRedeemedPayload{
			EventID:       ticket.EventID,
			ParticipantID: ticket.ParticipantID,
			RedeemedBy:    actor.ID,
			RedeemedAt:    at,
		},
	})
}
