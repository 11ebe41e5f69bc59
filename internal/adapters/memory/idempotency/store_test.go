package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
	"github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/idempotency"
)

func TestStore_PutThenGet(t *testing.T) {
	t.Parallel()

	s := NewStore()
	fp := idempotency.Fingerprint{
		Key:      "k1",
		Subject:  domain.UserID("user-1"),
		Method:   "POST",
		Route:    "/registrations",
		BodyHash: "abc123",
	}
	rec := idempotency.Record{
		StatusCode:  201,
		ContentType: "application/json",
		Body:        []byte(`{"ok":true}`),
		CreatedAt:   time.Unix(123, 0).UTC(),
	}

	if err := s.Put(context.Background(), fp, rec); err != nil {
		t.Fatalf("Put() err=%v", err)
	}

	got, ok, err := s.Get(context.Background(), fp)
	if err != nil {
		t.Fatalf("Get() err=%v", err)
	}
	if !ok {
		t.Fatalf("Get() ok=false, want true")
	}
	if got.StatusCode != rec.StatusCode || got.ContentType != rec.ContentType || string(got.Body) != string(rec.Body) {
		t.Fatalf("Get()=%+v, want %+v", got, rec)
	}
}

func TestStore_PrunesExpiredRecordsOnPut(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.MaxAge = time.Hour
	old := idempotency.Fingerprint{Key: "old", Subject: "user-1", Method: "POST", Route: "/registrations"}
	fresh := idempotency.Fingerprint{Key: "fresh", Subject: "user-1", Method: "POST", Route: "/registrations"}

	t0 := time.Unix(1000, 0).UTC()
	if err := s.Put(context.Background(), old, idempotency.Record{Body: []byte("a"), CreatedAt: t0}); err != nil {
		t.Fatalf("Put(old) err=%v", err)
	}
	if err := s.Put(context.Background(), fresh, idempotency.Record{Body: []byte("b"), CreatedAt: t0.Add(2 * time.Hour)}); err != nil {
		t.Fatalf("Put(fresh) err=%v", err)
	}

	if _, ok, _ := s.Get(context.Background(), old); ok {
		t.Fatalf("Get(old) ok=true, want pruned")
	}
	if _, ok, _ := s.Get(context.Background(), fresh); !ok {
		t.Fatalf("Get(fresh) ok=false, want true")
	}
}
