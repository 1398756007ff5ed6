package domain

import "time"

// Event is the directory entry tickets are bound to. Only the fields the
// ticketing core needs: ownership decides who may scan.
type Event struct {
	ID        string
	OwnerID   string
	Name      string
	StartsAt  time.Time
	CreatedAt time.Time
}
