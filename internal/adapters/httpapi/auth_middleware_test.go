package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/Overland-East-Bay/activity-signup-api/internal/app/accounts"
	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
	"github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/backend"
)

type stubAuthenticator struct {
	principals map[string]domain.Principal
	err        error
}

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (domain.Principal, error) {
	if s.err != nil {
		return domain.Principal{}, s.err
	}
	p, ok := s.principals[token]
	if !ok {
		return domain.Principal{}, &accounts.Error{Status: 401, Code: "UNAUTHENTICATED", Message: "session expired or unknown"}
	}
	return p, nil
}

func newAuthProbe(a Authenticator) http.Handler {
	s := NewServer(Services{}, nil, nil, nil)
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		if !ok {
			writeAPIError(w, r, http.StatusInternalServerError, "MISSING_PRINCIPAL", "principal missing from context", nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"userId": string(p.UserID)})
	})
	return middleware.RequestID(s.NewAuthMiddleware(a)(inner))
}

func TestAuthMiddleware(t *testing.T) {
	t.Parallel()

	auth := stubAuthenticator{principals: map[string]domain.Principal{
		"good": {UserID: "u-1", LoginID: "0041@signup.invalid", SessionToken: "good"},
	}}
	h := newAuthProbe(auth)

	cases := []struct {
		name       string
		authz      string
		wantStatus int
		wantCode   string
	}{
		{name: "missing header", authz: "", wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHENTICATED"},
		{name: "wrong scheme", authz: "Token good", wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHENTICATED"},
		{name: "empty bearer", authz: "Bearer   ", wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHENTICATED"},
		{name: "unknown session", authz: "Bearer nope", wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHENTICATED"},
		{name: "valid session", authz: "Bearer good", wantStatus: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.authz != "" {
				req.Header.Set("Authorization", tc.authz)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tc.wantStatus {
				t.Fatalf("status=%d want=%d body=%s", rr.Code, tc.wantStatus, rr.Body.String())
			}
			if tc.wantCode == "" {
				var body map[string]string
				if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil || body["userId"] != "u-1" {
					t.Fatalf("body=%s err=%v", rr.Body.String(), err)
				}
				return
			}
			var er ErrorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &er); err != nil {
				t.Fatalf("unmarshal err=%v", err)
			}
			if er.Error.Code != tc.wantCode {
				t.Fatalf("code=%q want=%q", er.Error.Code, tc.wantCode)
			}
			if rid, err := er.Error.RequestID.Get(); err != nil || rid == "" {
				t.Fatalf("requestId=%q err=%v", rid, err)
			}
		})
	}
}

func TestAuthMiddleware_StoreFailures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "backend", err: &backend.Error{Status: 503, Message: "upstream down"}, wantStatus: http.StatusBadGateway, wantCode: "BACKEND_ERROR"},
		{name: "unknown", err: errors.New("redis: connection refused"), wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			h := newAuthProbe(stubAuthenticator{err: tc.err})
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			req.Header.Set("Authorization", "Bearer any")
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tc.wantStatus {
				t.Fatalf("status=%d want=%d", rr.Code, tc.wantStatus)
			}
			var er ErrorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &er); err != nil {
				t.Fatalf("unmarshal err=%v", err)
			}
			if er.Error.Code != tc.wantCode {
				t.Fatalf("code=%q want=%q", er.Error.Code, tc.wantCode)
			}
		})
	}
}

func TestWriteError_BackendMessageSurfaced(t *testing.T) {
	t.Parallel()
	s := NewServer(Services{}, nil, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rr := httptest.NewRecorder()
	s.writeError(rr, req, errors.Join(errors.New("list bulletins"), &backend.Error{Status: 500, Message: "relation \"bulletins\" does not exist"}))

	var er ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &er); err != nil {
		t.Fatalf("unmarshal err=%v", err)
	}
	if rr.Code != http.StatusBadGateway || er.Error.Message != `relation "bulletins" does not exist` {
		t.Fatalf("status=%d message=%q", rr.Code, er.Error.Message)
	}
	if er.Error.RequestID.IsSpecified() {
		t.Fatalf("requestId should be omitted without the RequestID middleware")
	}
}
