package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eventra/entrypass/internal/domain"
	"github.com/eventra/entrypass/internal/observability"
	"github.com/eventra/entrypass/internal/qr"
)

func newRedemptionService(tickets *fakeTicketRepo, events *fakeEventRepo) *RedemptionService {
	return NewRedemptionService(RedemptionDependencies{
		TicketRepo: tickets,
		EventRepo:  events,
		Codec:      qr.NewCodec(),
		Metrics:    observability.NewMetrics(),
		Logger:     zap.NewNop(),
	})
}

func issuedTicket(id, eventID, participantID, token string) *domain.Ticket {
	return &domain.Ticket{
		ID:            id,
		EventID:       eventID,
		ParticipantID: participantID,
		Token:         token,
		State:         domain.TicketStateIssued,
		IssuedAt:      time.Now().UTC().Add(-time.Hour),
	}
}

func payloadFor(t *domain.Ticket) string {
	return qr.NewCodec().EncodeForDisplay(t.Token, t.EventID, t.ParticipantID)
}

func TestRedemptionService_Redeem(t *testing.T) {
	t.Parallel()

	owner := &domain.Actor{ID: "owner-1", Role: domain.RoleOrganizer}
	admin := &domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}
	event1 := &domain.Event{ID: "event-1", OwnerID: "owner-1", Name: "GopherConf"}
	event2 := &domain.Event{ID: "event-2", OwnerID: "owner-2", Name: "Other"}

	t.Run("accepts a valid scan and sets redeemedAt once", func(t *testing.T) {
		ticket := issuedTicket("t-1", "event-1", "participant-1", "tok-1")
		tickets := newFakeTicketRepo(ticket)
		svc := newRedemptionService(tickets, newFakeEventRepo(event1))

		redeemed, err := svc.Redeem(context.Background(), owner, "event-1", payloadFor(ticket))
		require.NoError(t, err)
		require.Equal(t, domain.TicketStateRedeemed, redeemed.State)
		require.NotNil(t, redeemed.RedeemedAt)
		require.Equal(t, "participant-1", redeemed.ParticipantID)
	})

	t.Run("admin may redeem for any event", func(t *testing.T) {
		ticket := issuedTicket("t-1", "event-1", "participant-1", "tok-1")
		tickets := newFakeTicketRepo(ticket)
		svc := newRedemptionService(tickets, newFakeEventRepo(event1))

		_, err := svc.Redeem(context.Background(), admin, "event-1", payloadFor(ticket))
		require.NoError(t, err)
	})

	t.Run("malformed payload is rejected before any lookup", func(t *testing.T) {
		svc := newRedemptionService(newFakeTicketRepo(), newFakeEventRepo(event1))

		_, err := svc.Redeem(context.Background(), owner, "event-1", "not-a-ticket")
		require.ErrorIs(t, err, domain.ErrMalformedPayload)
	})

	t.Run("unknown token is rejected", func(t *testing.T) {
		svc := newRedemptionService(newFakeTicketRepo(), newFakeEventRepo(event1))

		payload := qr.NewCodec().EncodeForDisplay("no-such-token", "event-1", "participant-1")
		_, err := svc.Redeem(context.Background(), owner, "event-1", payload)
		require.ErrorIs(t, err, domain.ErrUnknownTicket)
	})

	t.Run("forbidden scan never touches the ticket", func(t *testing.T) {
		ticket := issuedTicket("t-1", "event-1", "participant-1", "tok-1")
		tickets := newFakeTicketRepo(ticket)
		svc := newRedemptionService(tickets, newFakeEventRepo(event1, event2))

		outsider := &domain.Actor{ID: "owner-2", Role: domain.RoleOrganizer}
		_, err := svc.Redeem(context.Background(), outsider, "event-1", payloadFor(ticket))
		require.ErrorIs(t, err, domain.ErrForbidden)

		require.Zero(t, tickets.redeemCallCount(), "store mutator called despite failed authorization")
		stored := tickets.snapshot("tok-1")
		require.Equal(t, domain.TicketStateIssued, stored.State)
		require.Nil(t, stored.RedeemedAt)
	})

	t.Run("cross-event scan is refused and leaves the ticket issued", func(t *testing.T) {
		ticket := issuedTicket("t-1", "event-1", "participant-1", "tok-1")
		tickets := newFakeTicketRepo(ticket)
		svc := newRedemptionService(tickets, newFakeEventRepo(event1, event2))

		owner2 := &domain.Actor{ID: "owner-2", Role: domain.RoleOrganizer}
		_, err := svc.Redeem(context.Background(), owner2, "event-2", payloadFor(ticket))
		require.ErrorIs(t, err, domain.ErrWrongEvent)

		stored := tickets.snapshot("tok-1")
		require.Equal(t, domain.TicketStateIssued, stored.State)
		require.Nil(t, stored.RedeemedAt)
	})

	t.Run("second scan reports the original redemption time", func(t *testing.T) {
		ticket := issuedTicket("t-1", "event-1", "participant-1", "tok-1")
		tickets := newFakeTicketRepo(ticket)
		svc := newRedemptionService(tickets, newFakeEventRepo(event1))

		redeemed, err := svc.Redeem(context.Background(), owner, "event-1", payloadFor(ticket))
		require.NoError(t, err)

		_, err = svc.Redeem(context.Background(), owner, "event-1", payloadFor(ticket))
		require.ErrorIs(t, err, domain.ErrDuplicateRedemption)

		var dup *domain.DuplicateRedemptionError
		require.True(t, errors.As(err, &dup))
		require.Equal(t, *redeemed.RedeemedAt, dup.RedeemedAt)
	})

	t.Run("selecting a missing event fails before authorization", func(t *testing.T) {
		ticket := issuedTicket("t-1", "event-1", "participant-1", "tok-1")
		tickets := newFakeTicketRepo(ticket)
		svc := newRedemptionService(tickets, newFakeEventRepo())

		_, err := svc.Redeem(context.Background(), owner, "event-1", payloadFor(ticket))
		require.ErrorIs(t, err, domain.ErrEventNotFound)
		require.Zero(t, tickets.redeemCallCount())
	})
}

// Mirrors the gate-race scenario: two scanners submit the same token at the
// same instant, and more besides. Exactly one call wins.
func TestRedemptionService_ConcurrentScansRedeemAtMostOnce(t *testing.T) {
	t.Parallel()

	owner := &domain.Actor{ID: "owner-1", Role: domain.RoleOrganizer}
	event := &domain.Event{ID: "event-1", OwnerID: "owner-1", Name: "GopherConf"}
	ticket := issuedTicket("t-1", "event-1", "participant-1", "tok-1")
	tickets := newFakeTicketRepo(ticket)
	svc := newRedemptionService(tickets, newFakeEventRepo(event))
	payload := payloadFor(ticket)

	const scanners = 32
	var wg sync.WaitGroup
	errs := make([]error, scanners)
	redeemedAts := make([]*time.Time, scanners)

	for i := 0; i < scanners; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			redeemed, err := svc.Redeem(context.Background(), owner, "event-1", payload)
			errs[i] = err
			if err == nil {
				redeemedAts[i] = redeemed.RedeemedAt
			}
		}(i)
	}
	wg.Wait()

	var successes, duplicates int
	var winner *time.Time
	for i := 0; i < scanners; i++ {
		switch {
		case errs[i] == nil:
			successes++
			winner = redeemedAts[i]
		case errors.Is(errs[i], domain.ErrDuplicateRedemption):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", errs[i])
		}
	}
	require.Equal(t, 1, successes)
	require.Equal(t, scanners-1, duplicates)

	// Every duplicate must reference the winner's redemption time.
	for i := 0; i < scanners; i++ {
		var dup *domain.DuplicateRedemptionError
		if errors.As(errs[i], &dup) {
			require.Equal(t, *winner, dup.RedeemedAt)
		}
	}
}

// Walks the full operator story: wrong organizer, right organizer, retry.
func TestRedemptionService_OperatorScenario(t *testing.T) {
	t.Parallel()

	event1 := &domain.Event{ID: "event-1", OwnerID: "owner-1", Name: "GopherConf"}
	event2 := &domain.Event{ID: "event-2", OwnerID: "owner-2", Name: "Other"}
	ticket := issuedTicket("t-1", "event-1", "participant-1", "tok-1")
	tickets := newFakeTicketRepo(ticket)
	svc := newRedemptionService(tickets, newFakeEventRepo(event1, event2))
	payload := payloadFor(ticket)

	owner1 := &domain.Actor{ID: "owner-1", Role: domain.RoleOrganizer}
	owner2 := &domain.Actor{ID: "owner-2", Role: domain.RoleOrganizer}

	_, err := svc.Redeem(context.Background(), owner2, "event-1", payload)
	require.ErrorIs(t, err, domain.ErrForbidden)

	redeemed, err := svc.Redeem(context.Background(), owner1, "event-1", payload)
	require.NoError(t, err)
	require.NotNil(t, redeemed.RedeemedAt)

	_, err = svc.Redeem(context.Background(), owner1, "event-1", payload)
	require.ErrorIs(t, err, domain.ErrDuplicateRedemption)

	var dup *domain.DuplicateRedemptionError
	require.True(t, errors.As(err, &dup))
	require.Equal(t, *redeemed.RedeemedAt, dup.RedeemedAt)
}
