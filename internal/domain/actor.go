package domain

// Role enumerates caller roles carried by the external identity layer.
type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleOrganizer   Role = "ORGANIZER"
	RoleParticipant Role = "PARTICIPANT"
)

// Actor is the authenticated caller as asserted by the identity layer.
// The core never verifies credentials itself.
type Actor struct {
	ID   string
	Role Role
}
