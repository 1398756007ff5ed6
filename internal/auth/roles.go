package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/eventra/entrypass/internal/domain"
)

// CanRedeem decides whether the actor may redeem tickets for the event
// owned by ownerID: platform admins always, organizers only for their own
// events. Pure function, no I/O; it must run before any ticket mutation.
func CanRedeem(actor *domain.Actor, ownerID string) bool {
	if actor == nil {
		return false
	}
	if actor.Role == domain.RoleAdmin {
		return true
	}
	return actor.ID == ownerID
}

// RequireRole ensures the actor carries one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		actor, ok := ActorFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[actor.Role]; !exists {
			return fiber.NewError(http.StatusForbidden, "insufficient role")
		}
		return c.Next()
	}
}
