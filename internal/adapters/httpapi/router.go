package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs the API HTTP router. Everything except /healthz and the sign-in/out
// endpoints requires a session token.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	// Infra health check.
	r.Get("/healthz", s.healthz)

	r.Post("/auth/sign-in", s.signIn)
	r.Post("/auth/sign-out", s.signOut)

	r.Group(func(r chi.Router) {
		r.Use(s.NewAuthMiddleware(s.Accounts))

		r.Get("/me", s.me)

		r.Route("/taxonomy", func(r chi.Router) {
			r.Get("/", s.listTaxonomy)
			r.Post("/", s.addEntry)
			r.Get("/locations", s.listLocations)
			r.Get("/activities", s.listActivities)
			r.Get("/options", s.listOptions)
			r.Delete("/{entryId}", s.deleteEntry)
		})

		r.Route("/bulletins", func(r chi.Router) {
			r.Get("/", s.listBulletins)
			r.Post("/", s.postBulletin)
			r.Delete("/{bulletinId}", s.deleteBulletin)
		})

		r.Get("/registrations/me", s.listMyRegistrations)
		r.Post("/registrations", s.submitRegistration)

		r.Get("/admin/registrations", s.listAllRegistrations)
		r.Get("/admin/registrations/export", s.exportRegistrations)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, r, http.StatusNotFound, "NOT_FOUND", "no such route", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})
	return r
}
