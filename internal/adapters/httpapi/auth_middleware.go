package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
)

// Authenticator resolves a session token to the caller it belongs to.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Principal, error)
}

// bearerToken extracts the token from "Authorization: Bearer <token>". The second result
// is a short reason when the header is absent or malformed.
func bearerToken(r *http.Request) (string, string) {
	authz := r.Header.Get("Authorization")
	if authz == "" {
		return "", "missing Authorization header"
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(authz, prefix) {
		return "", "malformed Authorization header"
	}
	raw := strings.TrimSpace(strings.TrimPrefix(authz, prefix))
	if raw == "" {
		return "", "missing bearer token"
	}
	return raw, ""
}

// NewAuthMiddleware requires a live session token and stores the resolved principal in the
// request context.
func (s *Server) NewAuthMiddleware(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, reason := bearerToken(r)
			if reason != "" {
				writeAPIError(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", reason, nil)
				return
			}
			p, err := a.Authenticate(r.Context(), raw)
			if err != nil {
				s.writeError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}
