package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/nullable"
	"go.uber.org/zap"

	"github.com/Overland-East-Bay/activity-signup-api/internal/app/accounts"
	"github.com/Overland-East-Bay/activity-signup-api/internal/app/bulletins"
	"github.com/Overland-East-Bay/activity-signup-api/internal/app/catalog"
	"github.com/Overland-East-Bay/activity-signup-api/internal/app/registrations"
	"github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/backend"
)

type ErrorBody struct {
	Code      string                            `json:"code"`
	Message   string                            `json:"message"`
	Details   nullable.Nullable[map[string]any] `json:"details,omitempty"`
	RequestID nullable.Nullable[string]         `json:"requestId,omitempty"`
}

// ErrorResponse is the envelope for every non-2xx JSON response.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, r *http.Request, status int, code string, message string, details map[string]any) {
	var er ErrorResponse
	er.Error.Code = code
	er.Error.Message = message
	if details != nil {
		er.Error.Details = nullable.NewNullableWithValue(details)
	}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		er.Error.RequestID = nullable.NewNullableWithValue(rid)
	}
	writeJSON(w, status, er)
}

// appError is the shape shared by every application service's Error type.
type appError struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func asAppError(err error) (appError, bool) {
	if ae := (*accounts.Error)(nil); errors.As(err, &ae) {
		return appError(*ae), true
	}
	if ae := (*catalog.Error)(nil); errors.As(err, &ae) {
		return appError(*ae), true
	}
	if ae := (*registrations.Error)(nil); errors.As(err, &ae) {
		return appError(*ae), true
	}
	if ae := (*bulletins.Error)(nil); errors.As(err, &ae) {
		return appError(*ae), true
	}
	return appError{}, false
}

// writeError maps err onto the error envelope. Application errors keep their status and code;
// collaborator failures become 502 with the collaborator's message; anything else is a logged 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if ae, ok := asAppError(err); ok {
		writeAPIError(w, r, ae.Status, ae.Code, ae.Message, ae.Details)
		return
	}
	if be := (*backend.Error)(nil); errors.As(err, &be) {
		s.log.Warn("backend failure",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("route", r.URL.Path),
			zap.Error(err))
		writeAPIError(w, r, http.StatusBadGateway, "BACKEND_ERROR", be.Message, nil)
		return
	}
	s.log.Error("unhandled error",
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("method", r.Method),
		zap.String("route", r.URL.Path),
		zap.Error(err))
	writeAPIError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
}
