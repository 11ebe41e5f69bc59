package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestAsPgError(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("insert: %w", &pgconn.PgError{Code: UniqueViolationCode})
	pe, ok := AsPgError(wrapped)
	if !ok || pe.Code != UniqueViolationCode {
		t.Fatalf("AsPgError() = %v, %v; want unique violation", pe, ok)
	}
	if !IsUniqueViolation(wrapped) {
		t.Fatalf("IsUniqueViolation() = false, want true")
	}
	if IsUniqueViolation(errors.New("plain")) {
		t.Fatalf("IsUniqueViolation(plain) = true, want false")
	}
}

func TestNewPool_RejectsEmptyDSN(t *testing.T) {
	t.Parallel()

	if _, err := NewPool(context.Background(), "", PoolOptions{}); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
}
