package sessionstore

import (
	"context"
	"errors"
	"time"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
)

// ErrNotFound indicates the session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// Session binds an opaque bearer token to a signed-in user.
type Session struct {
	Token         string
	UserID        domain.UserID
	LoginID       domain.LoginID
	ProviderToken string

	CreatedAt time.Time
	ExpiresAt time.Time
}

// Store persists sessions.
//
// Get must not return a session whose ExpiresAt is at or before now; it returns ErrNotFound instead.
// Delete of a missing token is not an error.
type Store interface {
	Put(ctx context.Context, s Session) error
	Get(ctx context.Context, token string, now time.Time) (Session, error)
	Delete(ctx context.Context, token string) error
}
