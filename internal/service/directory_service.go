package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eventra/entrypass/internal/domain"
	"github.com/eventra/entrypass/internal/repository"
	apperrors "github.com/eventra/entrypass/pkg/util"
)

// DirectoryService is the thin event-directory surface: just enough for
// events to own tickets and for the redemption guard to resolve owners.
// Full event management lives elsewhere on the platform.
type DirectoryService struct {
	events repository.EventRepository
}

// NewDirectoryService constructs the service.
func NewDirectoryService(events repository.EventRepository) *DirectoryService {
	return &DirectoryService{events: events}
}

// CreateEvent registers an event owned by the caller.
func (s *DirectoryService) CreateEvent(ctx context.Context, ownerID, name string, startsAt time.Time) (*domain.Event, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	event := &domain.Event{
		ID:       uuid.NewString(),
		OwnerID:  ownerID,
		Name:     name,
		StartsAt: startsAt,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// GetEvent fetches a single event.
func (s *DirectoryService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	return s.events.GetByID(ctx, id)
}

// ListOwnEvents returns the caller's events.
func (s *DirectoryService) ListOwnEvents(ctx context.Context, ownerID string, limit, offset int) ([]domain.Event, error) {
	return s.events.ListByOwner(ctx, ownerID, limit, offset)
}
