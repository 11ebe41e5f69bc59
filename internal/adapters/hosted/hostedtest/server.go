// Package hostedtest runs an in-process stand-in for the managed data/auth service, enough of
// its REST surface for adapter and end-to-end tests.
package hostedtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// APIKey is the project key the fake server accepts.
const APIKey = "test-anon-key"

type row = map[string]any

type user struct {
	id       string
	password string
}

type failure struct {
	status  int
	message string
}

// Server is a fake hosted backend. It is safe for concurrent use.
type Server struct {
	URL string

	mu     sync.Mutex
	tables map[string][]row
	users  map[string]user
	tokens map[string]string
	fail   *failure
	drop   bool
	hits   map[string]int
}

// New starts a server that is closed when the test ends.
func New(t *testing.T) *Server {
	t.Helper()
	s := &Server{
		tables: map[string][]row{},
		users:  map[string]user{},
		tokens: map[string]string{},
		hits:   map[string]int{},
	}
	ts := httptest.NewServer(s.routes())
	t.Cleanup(ts.Close)
	s.URL = ts.URL
	return s
}

// AddUser registers a password account and returns its user id.
func (s *Server) AddUser(email, password string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.users[strings.ToLower(email)] = user{id: id, password: password}
	return id
}

// FailNext makes the next request fail with the given status and message.
func (s *Server) FailNext(status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = &failure{status: status, message: message}
}

// DropNextResponse makes the next request take effect but closes the connection instead of
// answering, as if the response were lost in transit.
func (s *Server) DropNextResponse() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drop = true
}

// Hits is the number of requests received with the given method.
func (s *Server) Hits(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[method]
}

// Rows returns a copy of the rows stored in a collection.
func (s *Server) Rows(table string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0, len(s.tables[table]))
	for _, r := range s.tables[table] {
		out = append(out, copyRow(r))
	}
	return out
}

// ActiveTokens is the number of access tokens not yet signed out.
func (s *Server) ActiveTokens() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.countHits, s.injectFailure, requireAPIKey)
	r.Post("/auth/v1/token", s.token)
	r.Post("/auth/v1/logout", s.logout)
	rest := r.With(requireBearerKey)
	rest.Get("/rest/v1/{table}", s.selectRows)
	rest.Post("/rest/v1/{table}", s.insertRows)
	rest.Delete("/rest/v1/{table}", s.deleteRows)
	return r
}

func (s *Server) countHits(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.Method]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		f, drop := s.fail, s.drop
		s.fail, s.drop = nil, false
		s.mu.Unlock()
		if f != nil {
			writeJSON(w, f.status, map[string]any{"message": f.message})
			return
		}
		if drop {
			next.ServeHTTP(httptest.NewRecorder(), r)
			hj, ok := w.(http.Hijacker)
			if !ok {
				panic("hostedtest: response writer cannot hijack")
			}
			conn, _, err := hj.Hijack()
			if err == nil {
				_ = conn.Close()
			}
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != APIKey {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid API key"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requireBearerKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+APIKey {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "JWT invalid"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) token(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("grant_type") != "password" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error_code": "validation_failed", "msg": "unsupported grant_type"})
		return
	}
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error_code": "bad_json", "msg": err.Error()})
		return
	}
	email := strings.ToLower(body.Email)

	s.mu.Lock()
	u, ok := s.users[email]
	if !ok || u.password != body.Password {
		s.mu.Unlock()
		writeJSON(w, http.StatusBadRequest, map[string]any{"error_code": "invalid_credentials", "msg": "Invalid login credentials"})
		return
	}
	tok := uuid.NewString()
	s.tokens[tok] = u.id
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": tok,
		"token_type":   "bearer",
		"user":         map[string]any{"id": u.id, "email": email},
	})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	s.mu.Lock()
	_, ok := s.tokens[tok]
	delete(s.tokens, tok)
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"msg": "invalid JWT"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func primaryKey(table string) string {
	if table == "user_permissions" {
		return "login_id"
	}
	return "id"
}

func (s *Server) selectRows(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	q := r.URL.Query()

	s.mu.Lock()
	var out []row
	for _, rw := range s.tables[table] {
		if matches(rw, q) {
			out = append(out, copyRow(rw))
		}
	}
	s.mu.Unlock()

	if order := q.Get("order"); order != "" {
		sortRows(out, order)
	}
	if sel := q.Get("select"); sel != "" && sel != "*" {
		cols := strings.Split(sel, ",")
		for i, rw := range out {
			p := row{}
			for _, c := range cols {
				p[c] = rw[c]
			}
			out[i] = p
		}
	}
	if out == nil {
		out = []row{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) insertRows(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": err.Error()})
		return
	}
	var rows []row
	if strings.HasPrefix(strings.TrimSpace(string(raw)), "[") {
		if err := json.Unmarshal(raw, &rows); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": err.Error()})
			return
		}
	} else {
		var one row
		if err := json.Unmarshal(raw, &one); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": err.Error()})
			return
		}
		rows = []row{one}
	}
	upsert := strings.Contains(r.Header.Get("Prefer"), "resolution=merge-duplicates")
	pk := primaryKey(table)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, in := range rows {
		if _, ok := in["created_at"]; !ok && pk == "id" {
			in["created_at"] = time.Now().UTC().Format(time.RFC3339Nano)
		}
		idx := -1
		for i, existing := range s.tables[table] {
			if fmt.Sprint(existing[pk]) == fmt.Sprint(in[pk]) {
				idx = i
				break
			}
		}
		switch {
		case idx >= 0 && upsert:
			for k, v := range in {
				s.tables[table][idx][k] = v
			}
		case idx >= 0:
			writeJSON(w, http.StatusConflict, map[string]any{
				"code":    "23505",
				"message": fmt.Sprintf("duplicate key value violates unique constraint %q", table+"_pkey"),
			})
			return
		default:
			s.tables[table] = append(s.tables[table], in)
		}
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) deleteRows(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	q := r.URL.Query()
	if len(filters(q)) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "DELETE requires a WHERE clause"})
		return
	}

	s.mu.Lock()
	kept := s.tables[table][:0]
	for _, rw := range s.tables[table] {
		if !matches(rw, q) {
			kept = append(kept, rw)
		}
	}
	s.tables[table] = kept
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func filters(q map[string][]string) map[string]string {
	out := map[string]string{}
	for k, vs := range q {
		if k == "select" || k == "order" || len(vs) == 0 {
			continue
		}
		if v, ok := strings.CutPrefix(vs[0], "eq."); ok {
			out[k] = v
		}
	}
	return out
}

func matches(rw row, q map[string][]string) bool {
	for col, want := range filters(q) {
		v, ok := rw[col]
		if !ok || v == nil || fmt.Sprint(v) != want {
			return false
		}
	}
	return true
}

func sortRows(rows []row, order string) {
	type key struct {
		col  string
		desc bool
	}
	var keys []key
	for _, part := range strings.Split(order, ",") {
		col, dir, _ := strings.Cut(part, ".")
		keys = append(keys, key{col: col, desc: dir == "desc"})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, k := range keys {
			c := compare(rows[i][k.col], rows[j][k.col])
			if c == 0 {
				continue
			}
			if k.desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func compare(a, b any) int {
	as, bs := fmt.Sprint(a), fmt.Sprint(b)
	if ta, err := time.Parse(time.RFC3339Nano, as); err == nil {
		if tb, err := time.Parse(time.RFC3339Nano, bs); err == nil {
			return ta.Compare(tb)
		}
	}
	if fa, ok := a.(float64); ok {
		if fb, ok := b.(float64); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(as, bs)
}

func copyRow(r row) row {
	out := make(row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
