package itest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Overland-East-Bay/activity-signup-api/internal/adapters/hosted"
	"github.com/Overland-East-Bay/activity-signup-api/internal/adapters/hosted/hostedtest"
	"github.com/Overland-East-Bay/activity-signup-api/internal/adapters/httpapi"
	memauth "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/memory/authprovider"
	membulletinrepo "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/memory/bulletinrepo"
	memclock "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/memory/clock"
	memidempotency "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/memory/idempotency"
	mempermissionrepo "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/memory/permissionrepo"
	memregistrationrepo "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/memory/registrationrepo"
	memsessionstore "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/memory/sessionstore"
	memtaxonomyrepo "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/memory/taxonomyrepo"
	pgauth "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/postgres/authprovider"
	pgbulletinrepo "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/postgres/bulletinrepo"
	pgidempotency "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/postgres/idempotency"
	pgpermissionrepo "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/postgres/permissionrepo"
	pgregistrationrepo "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/postgres/registrationrepo"
	pgtaxonomyrepo "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/postgres/taxonomyrepo"
	postgres_testutil "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/postgres/testutil"
	"github.com/Overland-East-Bay/activity-signup-api/internal/adapters/spreadsheet"
	"github.com/Overland-East-Bay/activity-signup-api/internal/app/accounts"
	"github.com/Overland-East-Bay/activity-signup-api/internal/app/bulletins"
	"github.com/Overland-East-Bay/activity-signup-api/internal/app/catalog"
	"github.com/Overland-East-Bay/activity-signup-api/internal/app/registrations"
	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
	"github.com/Overland-East-Bay/activity-signup-api/internal/domain/identity"
	authproviderport "github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/authprovider"
	bulletinrepoport "github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/bulletinrepo"
	idempotencyport "github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/idempotency"
	permissionrepoport "github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/permissionrepo"
	registrationrepoport "github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/registrationrepo"
	taxonomyrepoport "github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/taxonomyrepo"
)

type backend string

const (
	backendMemory   backend = "memory"
	backendPostgres backend = "postgres"
	backendHosted   backend = "hosted"
)

func backendsFromEnv(t *testing.T) []backend {
	t.Helper()
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ITEST_BACKEND"))) {
	case "", "memory":
		return []backend{backendMemory, backendHosted}
	case "postgres":
		return []backend{backendPostgres}
	case "hosted":
		return []backend{backendHosted}
	case "all":
		return []backend{backendMemory, backendHosted, backendPostgres}
	default:
		t.Fatalf("unknown ITEST_BACKEND value (expected memory|postgres|hosted|all)")
		return nil
	}
}

type testServer struct {
	baseURL string
	client  *http.Client

	taxonomy taxonomyrepoport.Repository
	perms    permissionrepoport.Repository
	// addAccount makes (loginID, password) valid for sign-in on backends that check passwords.
	addAccount func(t *testing.T, loginID domain.LoginID, password string)
}

func newTestServer(t *testing.T, b backend) *testServer {
	t.Helper()

	clk := memclock.NewManualClock(time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC))

	var (
		taxRepo    taxonomyrepoport.Repository
		regRepo    registrationrepoport.Repository
		bullRepo   bulletinrepoport.Repository
		permRepo   permissionrepoport.Repository
		provider   authproviderport.Provider
		idemStore  idempotencyport.Store
		addAccount func(t *testing.T, loginID domain.LoginID, password string)
	)

	switch b {
	case backendPostgres:
		pool := postgres_testutil.OpenMigratedPool(t)
		taxRepo = pgtaxonomyrepo.NewRepo(pool)
		regRepo = pgregistrationrepo.NewRepo(pool)
		bullRepo = pgbulletinrepo.NewRepo(pool)
		permRepo = pgpermissionrepo.NewRepo(pool)
		pgProvider := pgauth.NewProvider(pool)
		provider = pgProvider
		idemStore = pgidempotency.NewStore(pool)
		addAccount = func(t *testing.T, loginID domain.LoginID, password string) {
			t.Helper()
			if _, err := pgProvider.CreateAccount(context.Background(), loginID, password); err != nil {
				t.Fatalf("CreateAccount err=%v", err)
			}
		}
	case backendHosted:
		fake := hostedtest.New(t)
		c := hosted.NewClient(hosted.Config{BaseURL: fake.URL, APIKey: hostedtest.APIKey, Timeout: 5 * time.Second}, zap.NewNop())
		taxRepo = hosted.NewTaxonomyRepo(c)
		regRepo = hosted.NewRegistrationRepo(c)
		bullRepo = hosted.NewBulletinRepo(c)
		permRepo = hosted.NewPermissionRepo(c)
		provider = hosted.NewAuthProvider(c)
		idemStore = memidempotency.NewStore()
		addAccount = func(t *testing.T, loginID domain.LoginID, password string) {
			t.Helper()
			fake.AddUser(string(loginID), password)
		}
	case backendMemory:
		taxRepo = memtaxonomyrepo.NewRepo()
		regRepo = memregistrationrepo.NewRepo()
		bullRepo = membulletinrepo.NewRepo()
		permRepo = mempermissionrepo.NewRepo()
		provider = memauth.NewProvider()
		idemStore = memidempotency.NewStore()
		addAccount = func(*testing.T, domain.LoginID, string) {}
	default:
		t.Fatalf("unknown backend: %s", b)
	}

	svc := httpapi.Services{
		Accounts:      accounts.NewService(provider, permRepo, memsessionstore.NewStore(), clk, zap.NewNop()),
		Catalog:       catalog.NewService(taxRepo, permRepo, clk),
		Registrations: registrations.NewService(regRepo, taxRepo, permRepo, spreadsheet.NewWriter(), clk),
		Bulletins:     bulletins.NewService(bullRepo, permRepo, clk),
	}
	api := httpapi.NewServer(svc, idemStore, clk, zap.NewNop())

	srv := httptest.NewServer(httpapi.NewRouter(api))
	t.Cleanup(srv.Close)

	return &testServer{
		baseURL:    srv.URL,
		client:     srv.Client(),
		taxonomy:   taxRepo,
		perms:      permRepo,
		addAccount: addAccount,
	}
}

// uniqueName returns a display name that ends in letters so the ID suffix split stays unambiguous.
func uniqueName(prefix string) string {
	tail := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return 'a' + (r - '0')
		}
		if r == '-' {
			return -1
		}
		return r
	}, uuid.NewString()[:8])
	return prefix + " " + tail
}

// signUp provisions an account and signs it in, returning the session token.
func (s *testServer) signUp(t *testing.T, name, suffix string, admin bool) string {
	t.Helper()
	const password = "correct horse"
	loginID := domain.LoginID(identity.Address(name, suffix))
	s.addAccount(t, loginID, password)
	if admin {
		if err := s.perms.SetAdmin(context.Background(), loginID, true); err != nil {
			t.Fatalf("SetAdmin err=%v", err)
		}
	}
	status, body, _ := s.doJSON(t, http.MethodPost, "/auth/sign-in", "", nil, httpapi.SignInRequest{Name: name, IDSuffix: suffix, Password: password})
	if status != http.StatusOK {
		t.Fatalf("sign-in status=%d body=%s", status, string(body))
	}
	return mustUnmarshal[httpapi.SignInResponse](t, body).Token
}

func (s *testServer) url(path string) string {
	if strings.HasPrefix(path, "/") {
		return s.baseURL + path
	}
	return s.baseURL + "/" + path
}

func (s *testServer) doJSON(t *testing.T, method string, path string, token string, hdr map[string]string, body any) (int, []byte, http.Header) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.url(path), r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, resp.Header
}

type errorResponse struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"requestId"`
	} `json:"error"`
}

func mustUnmarshal[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v\nbody=%s", err, string(b))
	}
	return out
}

func requireErrorCode(t *testing.T, status int, body []byte, wantStatus int, wantCode string) {
	t.Helper()
	if status != wantStatus {
		t.Fatalf("status=%d want=%d body=%s", status, wantStatus, string(body))
	}
	got := mustUnmarshal[errorResponse](t, body)
	if got.Error.Code != wantCode {
		t.Fatalf("error.code=%q want=%q body=%s", got.Error.Code, wantCode, string(body))
	}
}

func requireHeaderPresent(t *testing.T, h http.Header, key string) {
	t.Helper()
	if strings.TrimSpace(h.Get(key)) == "" {
		t.Fatalf("expected header %q to be present", key)
	}
}

func urlQuery(s string) string { return url.QueryEscape(s) }
