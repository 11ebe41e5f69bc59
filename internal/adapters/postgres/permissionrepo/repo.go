package permissionrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
)

// Repo is a Postgres implementation of permissionrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) IsAdmin(ctx context.Context, loginID domain.LoginID) (bool, error) {
	if r.pool == nil {
		return false, errors.New("nil postgres pool")
	}
	var isAdmin bool
	err := r.pool.QueryRow(ctx, `
		SELECT is_admin FROM user_permissions WHERE login_id = $1
	`, string(loginID)).Scan(&isAdmin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return isAdmin, nil
}

func (r *Repo) SetAdmin(ctx context.Context, loginID domain.LoginID, isAdmin bool) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_permissions (login_id, is_admin, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (login_id)
		DO UPDATE SET is_admin = EXCLUDED.is_admin, updated_at = EXCLUDED.updated_at
	`, string(loginID), isAdmin)
	return err
}
