package taxonomyrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/postgres"
	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
	"github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/taxonomyrepo"
)

// Repo is a Postgres implementation of taxonomyrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) List(ctx context.Context) ([]taxonomyrepo.Entry, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, location, activity, option, created_at
		FROM activity_hierarchy
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]taxonomyrepo.Entry, 0)
	for rows.Next() {
		var (
			e  taxonomyrepo.Entry
			id string
		)
		if err := rows.Scan(&id, &e.Location, &e.Activity, &e.Option, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.ID = domain.EntryID(id)
		e.CreatedAt = e.CreatedAt.UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repo) Insert(ctx context.Context, e taxonomyrepo.Entry) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(e.ID))
	if err != nil {
		return fmt.Errorf("invalid entry id: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO activity_hierarchy (id, location, activity, option, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id, e.Location, e.Activity, e.Option, e.CreatedAt.UTC())
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return taxonomyrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id domain.EntryID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	uid, err := uuid.Parse(string(id))
	if err != nil {
		// No row can carry a malformed id.
		return nil
	}
	_, err = r.pool.Exec(ctx, `DELETE FROM activity_hierarchy WHERE id = $1`, uid)
	return err
}
