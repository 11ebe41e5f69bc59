// Package sessionstore keeps sessions in Redis so several API instances can share them.
package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
	"github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/sessionstore"
)

// KeyPrefix namespaces session keys.
const KeyPrefix = "signup:session:"

type record struct {
	UserID        string    `json:"user_id"`
	LoginID       string    `json:"login_id"`
	ProviderToken string    `json:"provider_token,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Store implements sessionstore.Store. Keys expire in Redis at the session's ExpiresAt;
// Get also checks ExpiresAt against the caller's clock.
type Store struct {
	rdb redis.UniversalClient
}

func NewStore(rdb redis.UniversalClient) *Store {
	return &Store{rdb: rdb}
}

func (s *Store) Put(ctx context.Context, sess sessionstore.Session) error {
	b, err := json.Marshal(record{
		UserID:        string(sess.UserID),
		LoginID:       string(sess.LoginID),
		ProviderToken: sess.ProviderToken,
		CreatedAt:     sess.CreatedAt.UTC(),
		ExpiresAt:     sess.ExpiresAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := s.rdb.Set(ctx, KeyPrefix+sess.Token, b, 0).Err(); err != nil {
		return fmt.Errorf("storing session: %w", err)
	}
	if err := s.rdb.ExpireAt(ctx, KeyPrefix+sess.Token, sess.ExpiresAt).Err(); err != nil {
		return fmt.Errorf("setting session expiry: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, token string, now time.Time) (sessionstore.Session, error) {
	b, err := s.rdb.Get(ctx, KeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return sessionstore.Session{}, sessionstore.ErrNotFound
		}
		return sessionstore.Session{}, fmt.Errorf("loading session: %w", err)
	}
	var rec record
	if err := json.Unmarshal(b, &rec); err != nil {
		return sessionstore.Session{}, fmt.Errorf("decoding session: %w", err)
	}
	if !now.Before(rec.ExpiresAt) {
		return sessionstore.Session{}, sessionstore.ErrNotFound
	}
	return sessionstore.Session{
		Token:         token,
		UserID:        domain.UserID(rec.UserID),
		LoginID:       domain.LoginID(rec.LoginID),
		ProviderToken: rec.ProviderToken,
		CreatedAt:     rec.CreatedAt,
		ExpiresAt:     rec.ExpiresAt,
	}, nil
}

func (s *Store) Delete(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, KeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}
