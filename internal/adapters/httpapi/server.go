package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Overland-East-Bay/activity-signup-api/internal/app/accounts"
	"github.com/Overland-East-Bay/activity-signup-api/internal/app/bulletins"
	"github.com/Overland-East-Bay/activity-signup-api/internal/app/catalog"
	"github.com/Overland-East-Bay/activity-signup-api/internal/app/registrations"
	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
	clockport "github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/clock"
	"github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/idempotency"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// Server adapts the application services to HTTP.
type Server struct {
	Accounts      *accounts.Service
	Catalog       *catalog.Service
	Registrations *registrations.Service
	Bulletins     *bulletins.Service

	// Idem is optional; without it Idempotency-Key headers are ignored.
	Idem  idempotency.Store
	Clock clockport.Clock

	log *zap.Logger
}

type Services struct {
	Accounts      *accounts.Service
	Catalog       *catalog.Service
	Registrations *registrations.Service
	Bulletins     *bulletins.Service
}

func NewServer(svc Services, idem idempotency.Store, clk clockport.Clock, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		Accounts:      svc.Accounts,
		Catalog:       svc.Catalog,
		Registrations: svc.Registrations,
		Bulletins:     svc.Bulletins,
		Idem:          idem,
		Clock:         clk,
		log:           log,
	}
}

// decodeBody reads a JSON body into dst. It writes the error response itself and reports
// whether the handler should continue.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeAPIError(w, r, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "request body too large", nil)
		return false
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		writeAPIError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "missing request body", nil)
		return false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "BAD_REQUEST", "malformed JSON body", map[string]any{"reason": err.Error()})
		return false
	}
	return true
}

func mustPrincipal(w http.ResponseWriter, r *http.Request) (domain.Principal, bool) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeAPIError(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", "missing session", nil)
	}
	return p, ok
}

func confirmed(r *http.Request) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get("confirm"))
	return err == nil && v
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// --- auth ---

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if !decodeBody(w, r, &req) {
		return
	}
	out, err := s.Accounts.SignIn(r.Context(), accounts.SignInInput{
		Name:     req.Name,
		IDSuffix: strings.TrimSpace(req.IDSuffix),
		Password: req.Password,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SignInResponse{
		Token:     out.Token,
		ExpiresAt: out.ExpiresAt,
		User:      userFromDomain(out.User),
	})
}

func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	raw, reason := bearerToken(r)
	if reason != "" {
		writeAPIError(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", reason, nil)
		return
	}
	if err := s.Accounts.SignOut(r.Context(), raw); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}
	u, err := s.Accounts.Me(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MeResponse{User: userFromDomain(u)})
}

// --- taxonomy ---

func (s *Server) listTaxonomy(w http.ResponseWriter, r *http.Request) {
	es, err := s.Catalog.ListEntries(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]TaxonomyEntry, 0, len(es))
	for _, e := range es {
		out = append(out, entryFromDomain(e))
	}
	writeJSON(w, http.StatusOK, TaxonomyResponse{Entries: out})
}

func (s *Server) listLocations(w http.ResponseWriter, r *http.Request) {
	locs, err := s.Catalog.Locations(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LocationsResponse{Locations: locs})
}

func (s *Server) listActivities(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")
	if location == "" {
		writeAPIError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "location is required", map[string]any{"location": "required"})
		return
	}
	acts, err := s.Catalog.Activities(r.Context(), location)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ActivitiesResponse{Location: location, Activities: acts})
}

func (s *Server) listOptions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	location, activity := q.Get("location"), q.Get("activity")
	details := map[string]any{}
	if location == "" {
		details["location"] = "required"
	}
	if activity == "" {
		details["activity"] = "required"
	}
	if len(details) > 0 {
		writeAPIError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "location and activity are required", details)
		return
	}
	opts, err := s.Catalog.Options(r.Context(), location, activity)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OptionsResponse{Location: location, Activity: activity, Options: opts})
}

func (s *Server) addEntry(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}
	var req AddEntryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	e, err := s.Catalog.AddEntry(r.Context(), p, catalog.AddEntryInput{
		Location: req.Location,
		Activity: req.Activity,
		Option:   req.Option,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, EntryResponse{Entry: entryFromDomain(e)})
}

func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}
	id := domain.EntryID(chi.URLParam(r, "entryId"))
	if err := s.Catalog.DeleteEntry(r.Context(), p, id, confirmed(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- bulletins ---

func (s *Server) listBulletins(w http.ResponseWriter, r *http.Request) {
	bs, err := s.Bulletins.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]Bulletin, 0, len(bs))
	for _, b := range bs {
		out = append(out, bulletinFromDomain(b))
	}
	writeJSON(w, http.StatusOK, BulletinsResponse{Bulletins: out})
}

func (s *Server) postBulletin(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}
	var req PostBulletinRequest
	if !decodeBody(w, r, &req) {
		return
	}
	b, err := s.Bulletins.Post(r.Context(), p, req.Title, req.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, BulletinResponse{Bulletin: bulletinFromDomain(b)})
}

func (s *Server) deleteBulletin(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}
	id := domain.BulletinID(chi.URLParam(r, "bulletinId"))
	if err := s.Bulletins.Delete(r.Context(), p, id, confirmed(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- registrations ---

func (s *Server) listMyRegistrations(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}
	rs, err := s.Registrations.ListMine(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RegistrationsResponse{Registrations: registrationsFromDomain(rs)})
}

func (s *Server) submitRegistration(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}
	var req SubmitRegistrationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	in := registrations.SubmitInput{
		Location:     req.Location,
		Activity:     req.Activity,
		Option:       req.Option,
		Phone:        req.Phone,
		Participants: req.Participants,
		Notes:        req.Notes,
	}
	if req.TripDate != nil {
		in.TripDate = req.TripDate.Time
	}
	// A rejected form must not claim the key, so the cheap checks run first.
	if err := s.Registrations.CheckRequired(in); err != nil {
		s.writeError(w, r, err)
		return
	}
	idem, err := s.beginIdempotent(r, p, req)
	if err != nil {
		if errors.Is(err, errIdempotencyKeyReuse) {
			writeAPIError(w, r, http.StatusConflict, "IDEMPOTENCY_KEY_REUSE", "idempotency key reuse with different payload", nil)
			return
		}
		s.writeError(w, r, err)
		return
	}
	if idem.replay(w) {
		return
	}

	rec, err := s.Registrations.Submit(r.Context(), p, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := RegistrationResponse{Registration: registrationFromDomain(rec)}
	idem.store(r.Context(), http.StatusCreated, resp)
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) listAllRegistrations(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}
	rs, err := s.Registrations.ListAll(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RegistrationsResponse{Registrations: registrationsFromDomain(rs)})
}

func (s *Server) exportRegistrations(w http.ResponseWriter, r *http.Request) {
	p, ok := mustPrincipal(w, r)
	if !ok {
		return
	}
	// Buffer the workbook so a failure can still be reported as JSON.
	var buf bytes.Buffer
	if err := s.Registrations.Export(r.Context(), p, &buf); err != nil {
		s.writeError(w, r, err)
		return
	}
	contentType, ext := s.Registrations.ExportFormat()
	name := "registrations-" + s.Clock.Now().Format("20060102") + ext
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
