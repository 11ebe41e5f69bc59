package clock

import "time"

// Clock supplies creation timestamps and session expiry checks.
// Tests substitute a manual implementation to keep ordering deterministic.
type Clock interface {
	Now() time.Time
}
