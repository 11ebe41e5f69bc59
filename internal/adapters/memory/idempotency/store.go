package idempotency

import (
	"context"
	"sync"
	"time"

	"github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/idempotency"
)

// DefaultMaxAge bounds how long a submission can be replayed from memory.
const DefaultMaxAge = 24 * time.Hour

// Store is an in-memory implementation of idempotency.Store.
// It is safe for concurrent use. Records older than MaxAge (relative to the newest Put)
// are pruned on write.
type Store struct {
	MaxAge time.Duration

	mu sync.RWMutex
	m  map[idempotency.Fingerprint]idempotency.Record
}

func NewStore() *Store {
	return &Store{
		MaxAge: DefaultMaxAge,
		m:      make(map[idempotency.Fingerprint]idempotency.Record),
	}
}

func (s *Store) Get(ctx context.Context, fp idempotency.Fingerprint) (idempotency.Record, bool, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.m[fp]
	return rec, ok, nil
}

func (s *Store) Put(ctx context.Context, fp idempotency.Fingerprint, rec idempotency.Record) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.MaxAge > 0 && !rec.CreatedAt.IsZero() {
		cutoff := rec.CreatedAt.Add(-s.MaxAge)
		for k, v := range s.m {
			if v.CreatedAt.Before(cutoff) {
				delete(s.m, k)
			}
		}
	}
	s.m[fp] = rec
	return nil
}
