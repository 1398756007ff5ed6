package service

import (
	"context"
	"sync"
	"time"

	"github.com/eventra/entrypass/internal/domain"
)

// fakeTicketRepo mirrors the storage contract: Create enforces both unique
// constraints, TryRedeem is a serialized compare-and-swap. All returned
// tickets are copies so callers cannot mutate store state directly.
type fakeTicketRepo struct {
	mu              sync.Mutex
	tickets         []*domain.Ticket
	forceCollisions int
	redeemCalls     int
}

func newFakeTicketRepo(seed ...*domain.Ticket) *fakeTicketRepo {
	repo := &fakeTicketRepo{}
	for _, t := range seed {
		c := *t
		repo.tickets = append(repo.tickets, &c)
	}
	return repo
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.forceCollisions > 0 {
		r.forceCollisions--
		return domain.ErrTokenCollision
	}
	for _, t := range r.tickets {
		if t.EventID == ticket.EventID && t.ParticipantID == ticket.ParticipantID {
			return domain.ErrDuplicateTicket
		}
		if t.Token == ticket.Token {
			return domain.ErrTokenCollision
		}
	}
	ticket.State = domain.TicketStateIssued
	ticket.IssuedAt = time.Now().UTC()
	stored := *ticket
	r.tickets = append(r.tickets, &stored)
	return nil
}

func (r *fakeTicketRepo) FindByToken(_ context.Context, token string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tickets {
		if t.Token == token {
			c := *t
			return &c, nil
		}
	}
	return nil, domain.ErrUnknownTicket
}

func (r *fakeTicketRepo) FindByEventAndParticipant(_ context.Context, eventID, participantID string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tickets {
		if t.EventID == eventID && t.ParticipantID == participantID {
			c := *t
			return &c, nil
		}
	}
	return nil, domain.ErrUnknownTicket
}

func (r *fakeTicketRepo) TryRedeem(_ context.Context, token, eventID string) (domain.RedemptionResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.redeemCalls++
	for _, t := range r.tickets {
		if t.Token != token {
			continue
		}
		if t.EventID != eventID {
			c := *t
			return domain.RedemptionResult{Status: domain.RedemptionEventMismatch, Ticket: &c}, nil
		}
		if t.State == domain.TicketStateRedeemed {
			c := *t
			return domain.RedemptionResult{Status: domain.RedemptionAlreadyRedeemed, Ticket: &c}, nil
		}
		now := time.Now().UTC()
		t.State = domain.TicketStateRedeemed
		t.RedeemedAt = &now
		c := *t
		return domain.RedemptionResult{Status: domain.RedemptionSuccess, Ticket: &c}, nil
	}
	return domain.RedemptionResult{Status: domain.RedemptionNotFound}, nil
}

// snapshot returns a copy of the stored ticket for assertions.
func (r *fakeTicketRepo) snapshot(token string) *domain.Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tickets {
		if t.Token == token {
			c := *t
			return &c
		}
	}
	return nil
}

func (r *fakeTicketRepo) redeemCallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.redeemCalls
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events map[string]*domain.Event
}

func newFakeEventRepo(seed ...*domain.Event) *fakeEventRepo {
	repo := &fakeEventRepo{events: make(map[string]*domain.Event)}
	for _, e := range seed {
		c := *e
		repo.events[e.ID] = &c
	}
	return repo
}

func (r *fakeEventRepo) Create(_ context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.CreatedAt = time.Now().UTC()
	c := *event
	r.events[event.ID] = &c
	return nil
}

func (r *fakeEventRepo) GetByID(_ context.Context, id string) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	c := *event
	return &c, nil
}

func (r *fakeEventRepo) ListByOwner(_ context.Context, ownerID string, limit, offset int) ([]domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Event
	for _, e := range r.events {
		if e.OwnerID == ownerID {
			result = append(result, *e)
		}
	}
	return result, nil
}
