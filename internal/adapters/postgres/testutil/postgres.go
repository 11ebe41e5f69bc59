// Package testutil starts a throwaway Postgres for adapter tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	postgres "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/postgres"
	"github.com/Overland-East-Bay/activity-signup-api/internal/adapters/postgres/migrations"
)

// DSN returns a connection string for a test database.
//
// TEST_DATABASE_URL wins when set. Otherwise a postgres:16-alpine container is started and
// terminated when the test ends. The test is skipped under -short or when Docker is unavailable.
func DSN(t *testing.T) string {
	t.Helper()
	if dsn := os.Getenv("TEST_DATABASE_URL"); dsn != "" {
		return dsn
	}
	if testing.Short() {
		t.Skip("skipping postgres test in -short mode")
	}

	ctx := context.Background()
	start := time.Now()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("getting container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("getting mapped port: %v", err)
	}
	t.Logf("postgres container started [%s]", time.Since(start))
	return fmt.Sprintf("postgres://test:test@%s:%d/test?sslmode=disable", host, port.Int())
}

// OpenMigratedPool returns a pool on a database with every migration applied.
func OpenMigratedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := DSN(t)
	if _, err := migrations.Up(dsn, 0); err != nil {
		t.Fatalf("applying migrations: %v", err)
	}
	pool, err := postgres.NewPool(context.Background(), dsn, postgres.PoolOptions{MaxConns: 5})
	if err != nil {
		t.Fatalf("connecting to test postgres: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}
