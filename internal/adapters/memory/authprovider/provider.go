// Package authprovider is the fallback-mode auth provider: every sign-in succeeds without
// password verification.
package authprovider

import (
	"context"

	"github.com/google/uuid"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
	"github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/authprovider"
)

// userNamespace scopes the name-based UUIDs handed out as user ids.
var userNamespace = uuid.MustParse("6f1c2a8e-5d0b-4c1e-9a57-3f2d8b6e4c10")

// Provider accepts any password. User ids are stable per login id.
type Provider struct{}

func NewProvider() Provider { return Provider{} }

func (Provider) SignIn(ctx context.Context, loginID domain.LoginID, password string) (authprovider.Identity, error) {
	_, _ = ctx, password
	return authprovider.Identity{
		UserID:      UserIDFor(loginID),
		LoginID:     loginID,
		AccessToken: "mock-" + uuid.NewString(),
	}, nil
}

func (Provider) SignOut(ctx context.Context, accessToken string) error {
	_, _ = ctx, accessToken
	return nil
}

// UserIDFor returns the user id the fallback provider assigns to loginID.
func UserIDFor(loginID domain.LoginID) domain.UserID {
	return domain.UserID(uuid.NewSHA1(userNamespace, []byte(loginID)).String())
}
