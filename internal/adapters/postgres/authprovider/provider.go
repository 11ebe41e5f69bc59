// Package authprovider verifies passwords against the accounts table.
package authprovider

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	postgres "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/postgres"
	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
	"github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/authprovider"
)

// ErrAccountExists is returned when creating an account for a login id that already has one.
var ErrAccountExists = errors.New("account already exists")

// Provider implements authprovider.Provider. Sessions are kept by the caller, so sign-in hands
// back no provider token and sign-out has nothing to revoke.
type Provider struct {
	pool *pgxpool.Pool
	cost int
}

func NewProvider(pool *pgxpool.Pool) *Provider {
	return &Provider{pool: pool, cost: bcrypt.DefaultCost}
}

// CreateAccount stores a bcrypt hash of password for loginID and returns the new user id.
func (p *Provider) CreateAccount(ctx context.Context, loginID domain.LoginID, password string) (domain.UserID, error) {
	if p.pool == nil {
		return "", errors.New("nil postgres pool")
	}
	if password == "" {
		return "", errors.New("empty password")
	}
	hash, err := HashPassword(password, p.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	id := uuid.New()
	_, err = p.pool.Exec(ctx, `
		INSERT INTO accounts (user_id, login_id, password_hash)
		VALUES ($1, $2, $3)
	`, id, string(loginID), hash)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return "", ErrAccountExists
		}
		return "", err
	}
	return domain.UserID(id.String()), nil
}

func (p *Provider) SignIn(ctx context.Context, loginID domain.LoginID, password string) (authprovider.Identity, error) {
	if p.pool == nil {
		return authprovider.Identity{}, errors.New("nil postgres pool")
	}
	var userID, hash string
	err := p.pool.QueryRow(ctx, `
		SELECT user_id::text, password_hash FROM accounts WHERE login_id = $1
	`, string(loginID)).Scan(&userID, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return authprovider.Identity{}, authprovider.ErrInvalidCredentials
		}
		return authprovider.Identity{}, err
	}
	if !CheckPassword(password, hash) {
		return authprovider.Identity{}, authprovider.ErrInvalidCredentials
	}
	return authprovider.Identity{UserID: domain.UserID(userID), LoginID: loginID}, nil
}

func (p *Provider) SignOut(ctx context.Context, accessToken string) error {
	_, _ = ctx, accessToken
	return nil
}

// HashPassword creates a bcrypt hash of password.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
