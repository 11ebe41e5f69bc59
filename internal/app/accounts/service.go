package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
	"github.com/Overland-East-Bay/activity-signup-api/internal/domain/identity"
	"github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/authprovider"
	clockport "github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/clock"
	"github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/permissionrepo"
	"github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/sessionstore"
)

// DefaultSessionTTL is how long a session token stays valid after sign-in.
const DefaultSessionTTL = 12 * time.Hour

type Service struct {
	provider authprovider.Provider
	perms    permissionrepo.Repository
	sessions sessionstore.Store
	clk      clockport.Clock
	log      *zap.Logger

	newToken func() string

	SessionTTL time.Duration
	// RequirePassword rejects an empty password before the provider is called. Off for providers
	// that do not verify passwords.
	RequirePassword bool
}

func NewService(provider authprovider.Provider, perms permissionrepo.Repository, sessions sessionstore.Store, clk clockport.Clock, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		provider:        provider,
		perms:           perms,
		sessions:        sessions,
		clk:             clk,
		log:             log,
		newToken:        uuid.NewString,
		SessionTTL:      DefaultSessionTTL,
		RequirePassword: true,
	}
}

type SignInInput struct {
	Name     string
	IDSuffix string
	Password string
}

type SignedIn struct {
	Token     string
	ExpiresAt time.Time
	User      domain.User
}

func (s *Service) SignIn(ctx context.Context, in SignInInput) (SignedIn, error) {
	name := domain.NormalizeHumanName(in.Name)
	details := map[string]any{}
	if name == "" {
		details["name"] = "must be non-empty"
	}
	if !identity.ValidSuffix(in.IDSuffix) {
		details["idSuffix"] = "must be exactly 4 digits"
	}
	if s.RequirePassword && in.Password == "" {
		details["password"] = "must be non-empty"
	}
	if len(details) > 0 {
		return SignedIn{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid sign-in request", Details: details}
	}

	loginID := domain.LoginID(identity.Address(name, in.IDSuffix))
	ident, err := s.provider.SignIn(ctx, loginID, in.Password)
	if err != nil {
		if errors.Is(err, authprovider.ErrInvalidCredentials) {
			return SignedIn{}, &Error{Status: 401, Code: "INVALID_CREDENTIALS", Message: "name, ID suffix or password is incorrect"}
		}
		return SignedIn{}, err
	}

	isAdmin, err := s.perms.IsAdmin(ctx, ident.LoginID)
	if err != nil {
		return SignedIn{}, err
	}

	now := s.clk.Now()
	sess := sessionstore.Session{
		Token:         s.newToken(),
		UserID:        ident.UserID,
		LoginID:       ident.LoginID,
		ProviderToken: ident.AccessToken,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.SessionTTL),
	}
	if err := s.sessions.Put(ctx, sess); err != nil {
		return SignedIn{}, err
	}

	return SignedIn{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		User:      userFor(ident.UserID, ident.LoginID, isAdmin),
	}, nil
}

// SignOut ends the session identified by token. Signing out an unknown or expired token succeeds.
// A provider-side failure is logged and does not keep the local session alive.
func (s *Service) SignOut(ctx context.Context, token string) error {
	sess, err := s.sessions.Get(ctx, token, s.clk.Now())
	switch {
	case errors.Is(err, sessionstore.ErrNotFound):
		return nil
	case err != nil:
		return err
	}
	if sess.ProviderToken != "" {
		if err := s.provider.SignOut(ctx, sess.ProviderToken); err != nil {
			s.log.Warn("provider sign-out failed", zap.String("user_id", string(sess.UserID)), zap.Error(err))
		}
	}
	return s.sessions.Delete(ctx, token)
}

func (s *Service) Authenticate(ctx context.Context, token string) (domain.Principal, error) {
	if token == "" {
		return domain.Principal{}, &Error{Status: 401, Code: "UNAUTHENTICATED", Message: "missing session token"}
	}
	sess, err := s.sessions.Get(ctx, token, s.clk.Now())
	if err != nil {
		if errors.Is(err, sessionstore.ErrNotFound) {
			return domain.Principal{}, &Error{Status: 401, Code: "UNAUTHENTICATED", Message: "session expired or unknown"}
		}
		return domain.Principal{}, err
	}
	return domain.Principal{UserID: sess.UserID, LoginID: sess.LoginID, SessionToken: sess.Token}, nil
}

func (s *Service) Me(ctx context.Context, p domain.Principal) (domain.User, error) {
	isAdmin, err := s.perms.IsAdmin(ctx, p.LoginID)
	if err != nil {
		return domain.User{}, err
	}
	return userFor(p.UserID, p.LoginID, isAdmin), nil
}

func userFor(id domain.UserID, loginID domain.LoginID, isAdmin bool) domain.User {
	return domain.User{
		ID:          id,
		LoginID:     loginID,
		DisplayName: identity.DisplayName(string(loginID)),
		IDSuffix:    identity.IDSuffix(string(loginID)),
		IsAdmin:     isAdmin,
	}
}
