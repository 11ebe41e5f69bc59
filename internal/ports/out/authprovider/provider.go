package authprovider

import (
	"context"
	"errors"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
)

// ErrInvalidCredentials is returned when the provider rejects the login/password pair.
var ErrInvalidCredentials = errors.New("invalid login credentials")

// Identity is the provider's view of a signed-in user.
type Identity struct {
	UserID  domain.UserID
	LoginID domain.LoginID
	// AccessToken is the provider session token; it is handed back on sign-out.
	AccessToken string
}

// Provider is the password-auth surface of the external collaborator.
type Provider interface {
	SignIn(ctx context.Context, loginID domain.LoginID, password string) (Identity, error)
	SignOut(ctx context.Context, accessToken string) error
}
