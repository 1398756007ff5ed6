package dto

import (
	"time"

	"github.com/eventra/entrypass/internal/domain"
)

// CreateEventRequest payload.
type CreateEventRequest struct {
	Name     string    `json:"name"`
	StartsAt time.Time `json:"starts_at"`
}

// EventResponse payload.
type EventResponse struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	StartsAt  time.Time `json:"starts_at"`
	CreatedAt time.Time `json:"created_at"`
}

// EventView maps a domain event.
func EventView(event *domain.Event) EventResponse {
	return EventResponse{
		ID:        event.ID,
		OwnerID:   event.OwnerID,
		Name:      event.Name,
		StartsAt:  event.StartsAt,
		CreatedAt: event.CreatedAt,
	}
}
