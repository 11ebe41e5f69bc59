package sessionstore

import (
	"context"
	"sync"
	"time"

	"github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/sessionstore"
)

// Store is an in-memory implementation of sessionstore.Store.
// It is safe for concurrent use. Expired sessions are dropped lazily on Get.
type Store struct {
	mu sync.Mutex
	m  map[string]sessionstore.Session
}

func NewStore() *Store {
	return &Store{m: make(map[string]sessionstore.Session)}
}

func (s *Store) Put(ctx context.Context, sess sessionstore.Session) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[sess.Token] = sess
	return nil
}

func (s *Store) Get(ctx context.Context, token string, now time.Time) (sessionstore.Session, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[token]
	if !ok {
		return sessionstore.Session{}, sessionstore.ErrNotFound
	}
	if !now.Before(sess.ExpiresAt) {
		delete(s.m, token)
		return sessionstore.Session{}, sessionstore.ErrNotFound
	}
	return sess, nil
}

func (s *Store) Delete(ctx context.Context, token string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, token)
	return nil
}
