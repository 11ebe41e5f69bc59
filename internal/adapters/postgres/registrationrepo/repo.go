package registrationrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/postgres"
	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
	"github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/registrationrepo"
)

// Repo is a Postgres implementation of registrationrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const selectColumns = `
	SELECT id::text, user_id, login_id, location, activity, option,
	       submitter_name, id_suffix, phone, participants, trip_date, notes, created_at
	FROM notes
`

func (r *Repo) Insert(ctx context.Context, rec registrationrepo.Registration) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(rec.ID))
	if err != nil {
		return fmt.Errorf("invalid registration id: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO notes (
			id,
			user_id,
			login_id,
			location,
			activity,
			option,
			submitter_name,
			id_suffix,
			phone,
			participants,
			trip_date,
			notes,
			created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		id,
		string(rec.UserID),
		string(rec.LoginID),
		rec.Location,
		rec.Activity,
		rec.Option,
		rec.SubmitterName,
		rec.IDSuffix,
		rec.Phone,
		rec.Participants,
		rec.TripDate,
		rec.Notes,
		rec.CreatedAt.UTC(),
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return registrationrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) ListByUser(ctx context.Context, userID domain.UserID) ([]registrationrepo.Registration, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, selectColumns+`
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, string(userID))
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *Repo) ListAll(ctx context.Context) ([]registrationrepo.Registration, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, selectColumns+`
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func collect(rows pgx.Rows) ([]registrationrepo.Registration, error) {
	defer rows.Close()
	out := make([]registrationrepo.Registration, 0)
	for rows.Next() {
		var (
			rec             registrationrepo.Registration
			id, user, login string
		)
		if err := rows.Scan(
			&id,
			&user,
			&login,
			&rec.Location,
			&rec.Activity,
			&rec.Option,
			&rec.SubmitterName,
			&rec.IDSuffix,
			&rec.Phone,
			&rec.Participants,
			&rec.TripDate,
			&rec.Notes,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		rec.ID = domain.RegistrationID(id)
		rec.UserID = domain.UserID(user)
		rec.LoginID = domain.LoginID(login)
		rec.CreatedAt = rec.CreatedAt.UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}
