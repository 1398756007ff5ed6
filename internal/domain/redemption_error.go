package domain

import (
	"fmt"
	"time"
)

// DuplicateRedemptionError reports a scan of an already-used ticket. It
// carries the original redemption time so the operator can see when the
// ticket was first accepted.
type DuplicateRedemptionError struct {
	TicketID   string
	RedeemedAt time.Time
}

func (e *DuplicateRedemptionError) Error() string {
	return fmt.Sprintf("ticket already redeemed at %s", e.RedeemedAt.Format(time.RFC3339))
}

// Is makes errors.Is(err, ErrDuplicateRedemption) hold.
func (e *DuplicateRedemptionError) Is(target error) bool {
	return target == ErrDuplicateRedemption
}
