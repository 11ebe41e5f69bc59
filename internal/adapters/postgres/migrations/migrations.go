// Package migrations embeds the schema and applies it with golang-migrate.
package migrations

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed *.sql
var files embed.FS

// New returns a migrator for the embedded schema against dsn (a postgres:// URL).
// The caller must Close it.
func New(dsn string) (*migrate.Migrate, error) {
	src, err := iofs.New(files, ".")
	if err != nil {
		return nil, fmt.Errorf("opening embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating migrator: %w", err)
	}
	return m, nil
}

// Result describes the schema state after a run.
type Result struct {
	Version  uint
	Dirty    bool
	NoChange bool
}

// Up applies all pending migrations, or at most steps of them when steps > 0.
func Up(dsn string, steps int) (Result, error) {
	return run(dsn, func(m *migrate.Migrate) error {
		if steps > 0 {
			return m.Steps(steps)
		}
		return m.Up()
	})
}

// Down reverts steps migrations, or all of them when steps <= 0.
func Down(dsn string, steps int) (Result, error) {
	return run(dsn, func(m *migrate.Migrate) error {
		if steps > 0 {
			return m.Steps(-steps)
		}
		return m.Down()
	})
}

func run(dsn string, fn func(*migrate.Migrate) error) (Result, error) {
	m, err := New(dsn)
	if err != nil {
		return Result{}, err
	}
	defer m.Close()

	var res Result
	if err := fn(m); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return Result{}, fmt.Errorf("migration failed: %w", err)
		}
		res.NoChange = true
	}
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return Result{}, fmt.Errorf("reading schema version: %w", err)
	}
	res.Version, res.Dirty = version, dirty
	return res, nil
}
