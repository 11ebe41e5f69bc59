package idempotency

import (
	"context"
	"time"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
)

// Key is the caller-provided idempotency key (Idempotency-Key header).
type Key string

// Fingerprint identifies a request uniquely for idempotency purposes:
// key + caller + route + request body hash.
//
// A record stored with an empty BodyHash holds the hash of the first request seen for
// (key, caller, route); it is used to reject key reuse with a different payload.
type Fingerprint struct {
	Key      Key
	Subject  domain.UserID
	Method   string
	Route    string
	BodyHash string
}

// Record is the stored response replayed for a duplicate request.
type Record struct {
	StatusCode  int
	ContentType string
	Body        []byte
	CreatedAt   time.Time
}

// Store persists idempotency records.
type Store interface {
	Get(ctx context.Context, fp Fingerprint) (Record, bool, error)
	Put(ctx context.Context, fp Fingerprint, rec Record) error
}
