package hosted

import (
	"context"
	"net/http"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
	"github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/authprovider"
)

type passwordGrant struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	User        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// AuthProvider implements authprovider.Provider with the service's password grant.
type AuthProvider struct {
	c *Client
}

func NewAuthProvider(c *Client) *AuthProvider { return &AuthProvider{c: c} }

func (p *AuthProvider) SignIn(ctx context.Context, loginID domain.LoginID, password string) (authprovider.Identity, error) {
	var tok tokenResponse
	resp, err := p.c.Auth(ctx).
		SetQueryParam("grant_type", "password").
		SetBody(passwordGrant{Email: string(loginID), Password: password}).
		SetResult(&tok).
		Post("/auth/v1/token")
	if err == nil && isCredentialRejection(resp.StatusCode(), authErrorCode(resp)) {
		return authprovider.Identity{}, authprovider.ErrInvalidCredentials
	}
	if err := p.c.Check("password sign-in", resp, err); err != nil {
		return authprovider.Identity{}, err
	}
	return authprovider.Identity{
		UserID:      domain.UserID(tok.User.ID),
		LoginID:     loginID,
		AccessToken: tok.AccessToken,
	}, nil
}

func (p *AuthProvider) SignOut(ctx context.Context, accessToken string) error {
	resp, err := p.c.Auth(ctx).
		SetAuthToken(accessToken).
		Post("/auth/v1/logout")
	return p.c.Check("sign-out", resp, err)
}

func isCredentialRejection(status int, code string) bool {
	if status != http.StatusBadRequest && status != http.StatusUnauthorized {
		return false
	}
	switch code {
	case "invalid_grant", "invalid_credentials":
		return true
	}
	return false
}
