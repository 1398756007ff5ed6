package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/eventra/entrypass/internal/domain"
)

// testPool connects to the database named by TEST_POSTGRES_DSN and applies
// the migrations. Tests are skipped when the variable is unset so the suite
// stays runnable without infrastructure.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	entries, err := os.ReadDir(filepath.Join("..", "..", "migrations"))
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		content, err := os.ReadFile(filepath.Join("..", "..", "migrations", name))
		require.NoError(t, err)
		_, err = pool.Exec(ctx, string(content))
		require.NoError(t, err)
	}

	_, err = pool.Exec(ctx, "TRUNCATE tickets, events CASCADE")
	require.NoError(t, err)
	return pool
}

func seedEvent(t *testing.T, pool *pgxpool.Pool, ownerID string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := pool.Exec(context.Background(),
		"INSERT INTO events (id, owner_id, name, starts_at) VALUES ($1,$2,$3,$4)",
		id, ownerID, "integration-event", time.Now().Add(time.Hour))
	require.NoError(t, err)
	return id
}

func TestTicketRepository_CreateEnforcesUniqueness(t *testing.T) {
	pool := testPool(t)
	repo := NewTicketRepository(pool)
	ctx := context.Background()
	eventID := seedEvent(t, pool, "owner-1")

	first := &domain.Ticket{ID: uuid.NewString(), EventID: eventID, ParticipantID: "p-1", Token: "token-a"}
	require.NoError(t, repo.Create(ctx, first))
	require.False(t, first.IssuedAt.IsZero())

	dupReg := &domain.Ticket{ID: uuid.NewString(), EventID: eventID, ParticipantID: "p-1", Token: "token-b"}
	require.ErrorIs(t, repo.Create(ctx, dupReg), domain.ErrDuplicateTicket)

	dupToken := &domain.Ticket{ID: uuid.NewString(), EventID: eventID, ParticipantID: "p-2", Token: "token-a"}
	require.ErrorIs(t, repo.Create(ctx, dupToken), domain.ErrTokenCollision)
}

func TestTicketRepository_TryRedeemOutcomes(t *testing.T) {
	pool := testPool(t)
	repo := NewTicketRepository(pool)
	ctx := context.Background()
	event1 := seedEvent(t, pool, "owner-1")
	event2 := seedEvent(t, pool, "owner-2")

	ticket := &domain.Ticket{ID: uuid.NewString(), EventID: event1, ParticipantID: "p-1", Token: "token-a"}
	require.NoError(t, repo.Create(ctx, ticket))

	result, err := repo.TryRedeem(ctx, "token-missing", event1)
	require.NoError(t, err)
	require.Equal(t, domain.RedemptionNotFound, result.Status)

	result, err = repo.TryRedeem(ctx, "token-a", event2)
	require.NoError(t, err)
	require.Equal(t, domain.RedemptionEventMismatch, result.Status)

	stored, err := repo.FindByToken(ctx, "token-a")
	require.NoError(t, err)
	require.Equal(t, domain.TicketStateIssued, stored.State)
	require.Nil(t, stored.RedeemedAt)

	result, err = repo.TryRedeem(ctx, "token-a", event1)
	require.NoError(t, err)
	require.Equal(t, domain.RedemptionSuccess, result.Status)
	require.Equal(t, domain.TicketStateRedeemed, result.Ticket.State)
	require.NotNil(t, result.Ticket.RedeemedAt)
	firstRedeemedAt := *result.Ticket.RedeemedAt

	result, err = repo.TryRedeem(ctx, "token-a", event1)
	require.NoError(t, err)
	require.Equal(t, domain.RedemptionAlreadyRedeemed, result.Status)
	require.Equal(t, firstRedeemedAt, *result.Ticket.RedeemedAt)
}

func TestTicketRepository_ConcurrentRedeemIsAtMostOnce(t *testing.T) {
	pool := testPool(t)
	repo := NewTicketRepository(pool)
	ctx := context.Background()
	eventID := seedEvent(t, pool, "owner-1")

	ticket := &domain.Ticket{ID: uuid.NewString(), EventID: eventID, ParticipantID: "p-1", Token: "token-race"}
	require.NoError(t, repo.Create(ctx, ticket))

	const scanners = 16
	var wg sync.WaitGroup
	statuses := make([]domain.RedemptionStatus, scanners)
	errs := make([]error, scanners)

	for i := 0; i < scanners; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := repo.TryRedeem(ctx, "token-race", eventID)
			errs[i] = err
			if err == nil {
				statuses[i] = result.Status
			}
		}(i)
	}
	wg.Wait()

	var successes, duplicates int
	for i := 0; i < scanners; i++ {
		require.NoError(t, errs[i])
		switch statuses[i] {
		case domain.RedemptionSuccess:
			successes++
		case domain.RedemptionAlreadyRedeemed:
			duplicates++
		default:
			t.Fatalf("unexpected status: %v", statuses[i])
		}
	}
	require.Equal(t, 1, successes)
	require.Equal(t, scanners-1, duplicates)
}

func TestTicketRepository_FindByEventAndParticipant(t *testing.T) {
	pool := testPool(t)
	repo := NewTicketRepository(pool)
	ctx := context.Background()
	eventID := seedEvent(t, pool, "owner-1")

	ticket := &domain.Ticket{ID: uuid.NewString(), EventID: eventID, ParticipantID: "p-1", Token: "token-a"}
	require.NoError(t, repo.Create(ctx, ticket))

	found, err := repo.FindByEventAndParticipant(ctx, eventID, "p-1")
	require.NoError(t, err)
	require.Equal(t, ticket.ID, found.ID)

	_, err = repo.FindByEventAndParticipant(ctx, eventID, "p-2")
	require.True(t, errors.Is(err, domain.ErrUnknownTicket))
}
