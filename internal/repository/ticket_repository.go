package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventra/entrypass/internal/domain"
)

// Unique constraints declared in migrations. Violation of either one is a
// distinct business condition, not a generic storage failure.
const (
	constraintTicketToken            = "tickets_token_uniq"
	constraintTicketEventParticipant = "tickets_event_participant_uniq"
)

// TicketRepository is the single source of truth for ticket state. Create
// and TryRedeem are the only mutators anywhere in the codebase; nothing
// else is allowed to write ticket rows.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	FindByToken(ctx context.Context, token string) (*domain.Ticket, error)
	FindByEventAndParticipant(ctx context.Context, eventID, participantID string) (*domain.Ticket, error)
	TryRedeem(ctx context.Context, token, eventID string) (domain.RedemptionResult, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, event_id, participant_id, token, state)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING issued_at`
	err := r.pool.QueryRow(ctx, query,
		ticket.ID,
		ticket.EventID,
		ticket.ParticipantID,
		ticket.Token,
		domain.TicketStateIssued,
	).Scan(&ticket.IssuedAt)
	if err != nil {
		if isUniqueViolation(err, constraintTicketEventParticipant) {
			return domain.ErrDuplicateTicket
		}
		if isUniqueViolation(err, constraintTicketToken) {
			return domain.ErrTokenCollision
		}
		return fmt.Errorf("create ticket: %w", err)
	}
	ticket.State = domain.TicketStateIssued
	return nil
}

func (r *ticketRepository) FindByToken(ctx context.Context, token string) (*domain.Ticket, error) {
	const query = `
        SELECT id, event_id, participant_id, token, state, issued_at, redeemed_at
        FROM tickets WHERE token=$1`
	var ticket domain.Ticket
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&ticket.ID,
		&ticket.EventID,
		&ticket.ParticipantID,
		&ticket.Token,
		&ticket.State,
		&ticket.IssuedAt,
		&ticket.RedeemedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUnknownTicket
		}
		return nil, fmt.Errorf("find ticket by token: %w", err)
	}
	return &ticket, nil
}

func (r *ticketRepository) FindByEventAndParticipant(ctx context.Context, eventID, participantID string) (*domain.Ticket, error) {
	const query = `
        SELECT id, event_id, participant_id, token, state, issued_at, redeemed_at
        FROM tickets WHERE event_id=$1 AND participant_id=$2`
	var ticket domain.Ticket
	err := r.pool.QueryRow(ctx, query, eventID, participantID).Scan(
		&ticket.ID,
		&ticket.EventID,
		&ticket.ParticipantID,
		&ticket.Token,
		&ticket.State,
		&ticket.IssuedAt,
		&ticket.RedeemedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUnknownTicket
		}
		return nil, fmt.Errorf("find ticket by registration: %w", err)
	}
	return &ticket, nil
}

// TryRedeem is the linearization point for redemption. The UPDATE below is
// the only write: it succeeds only for a row that is currently ISSUED and
// bound to the operator's event, so concurrent callers racing on the same
// token serialize on the row and exactly one observes ISSUED. The follow-up
// read exists purely to classify a refusal; REDEEMED is terminal, so the
// classification cannot be invalidated by a later transition.
func (r *ticketRepository) TryRedeem(ctx context.Context, token, eventID string) (domain.RedemptionResult, error) {
	const update = `
        UPDATE tickets
        SET state=$3, redeemed_at=NOW()
        WHERE token=$1 AND event_id=$2 AND state=$4
        RETURNING id, event_id, participant_id, token, state, issued_at, redeemed_at`

	var ticket domain.Ticket
	err := r.pool.QueryRow(ctx, update, token, eventID, domain.TicketStateRedeemed, domain.TicketStateIssued).Scan(
		&ticket.ID,
		&ticket.EventID,
		&ticket.ParticipantID,
		&ticket.Token,
		&ticket.State,
		&ticket.IssuedAt,
		&ticket.RedeemedAt,
	)
	if err == nil {
		return domain.RedemptionResult{Status: domain.RedemptionSuccess, Ticket: &ticket}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.RedemptionResult{}, fmt.Errorf("redeem ticket: %w", err)
	}

	existing, err := r.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownTicket) {
			return domain.RedemptionResult{Status: domain.RedemptionNotFound}, nil
		}
		return domain.RedemptionResult{}, err
	}
	// Cross-event scans are reported as a mismatch even for used tickets:
	// the operator at the gate needs to know the ticket does not belong to
	// their event at all.
	if existing.EventID != eventID {
		return domain.RedemptionResult{Status: domain.RedemptionEventMismatch, Ticket: existing}, nil
	}
	return domain.RedemptionResult{Status: domain.RedemptionAlreadyRedeemed, Ticket: existing}, nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}
