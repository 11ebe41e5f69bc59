package bulletinrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/postgres"
	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
	"github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/bulletinrepo"
)

// Repo is a Postgres implementation of bulletinrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) List(ctx context.Context) ([]bulletinrepo.Bulletin, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, title, body, created_at
		FROM bulletins
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]bulletinrepo.Bulletin, 0)
	for rows.Next() {
		var (
			b  bulletinrepo.Bulletin
			id string
		)
		if err := rows.Scan(&id, &b.Title, &b.Body, &b.CreatedAt); err != nil {
			return nil, err
		}
		b.ID = domain.BulletinID(id)
		b.CreatedAt = b.CreatedAt.UTC()
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repo) Insert(ctx context.Context, b bulletinrepo.Bulletin) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(b.ID))
	if err != nil {
		return fmt.Errorf("invalid bulletin id: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO bulletins (id, title, body, created_at)
		VALUES ($1, $2, $3, $4)
	`, id, b.Title, b.Body, b.CreatedAt.UTC())
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return bulletinrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id domain.BulletinID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	uid, err := uuid.Parse(string(id))
	if err != nil {
		return nil
	}
	_, err = r.pool.Exec(ctx, `DELETE FROM bulletins WHERE id = $1`, uid)
	return err
}
