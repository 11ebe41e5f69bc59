package httpapi

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
	"github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/idempotency"
)

// IdempotencyKeyHeader is the optional request header that makes a POST safe to retry.
const IdempotencyKeyHeader = "Idempotency-Key"

var errIdempotencyKeyReuse = errors.New("idempotency key reused with a different payload")

// idempotentCall tracks one keyed request. The zero value (no key or no store) is inert.
type idempotentCall struct {
	s        *Server
	metaFP   idempotency.Fingerprint
	respFP   idempotency.Fingerprint
	bodyHash string
	claimed  bool
	rec      *idempotency.Record
}

// beginIdempotent looks up the request's fingerprint.
//
// The first successful request for (key, caller, route) records its body hash under a fingerprint
// with an empty BodyHash; a later request with the same key and a different hash is rejected. A
// request whose full fingerprint already has a stored response is replayed. Nothing is written
// here: a key is only claimed by store, so a failed request leaves it free.
func (s *Server) beginIdempotent(r *http.Request, p domain.Principal, body any) (idempotentCall, error) {
	key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
	if key == "" || s.Idem == nil {
		return idempotentCall{}, nil
	}
	ctx := r.Context()
	bodyHash, err := hashBody(body)
	if err != nil {
		return idempotentCall{}, err
	}

	metaFP := idempotency.Fingerprint{
		Key:      idempotency.Key(key),
		Subject:  p.UserID,
		Method:   r.Method,
		Route:    r.URL.Path,
		BodyHash: "",
	}
	meta, ok, err := s.Idem.Get(ctx, metaFP)
	if err != nil {
		return idempotentCall{}, err
	}
	if ok && string(meta.Body) != bodyHash {
		return idempotentCall{}, errIdempotencyKeyReuse
	}

	call := idempotentCall{s: s, metaFP: metaFP, respFP: metaFP, bodyHash: bodyHash, claimed: ok}
	call.respFP.BodyHash = bodyHash
	rec, ok, err := s.Idem.Get(ctx, call.respFP)
	if err != nil {
		return idempotentCall{}, err
	}
	if ok && rec.StatusCode != 0 && strings.HasPrefix(rec.ContentType, "application/json") {
		call.rec = &rec
	}
	return call, nil
}

// replay writes the stored response, if any, and reports whether it did.
func (c idempotentCall) replay(w http.ResponseWriter) bool {
	if c.rec == nil {
		return false
	}
	w.Header().Set("Content-Type", c.rec.ContentType)
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(c.rec.StatusCode)
	_, _ = w.Write(c.rec.Body)
	return true
}

// store saves a successful response for later replay. A storage failure only costs the replay.
func (c idempotentCall) store(ctx context.Context, status int, resp any) {
	if c.s == nil {
		return
	}
	b, err := json.Marshal(resp)
	if err != nil {
		return
	}
	// json.Encoder appends a newline; keep replays byte-identical to the original response.
	b = append(b, '\n')
	if !c.claimed {
		if err := c.s.Idem.Put(ctx, c.metaFP, idempotency.Record{
			ContentType: "text/plain",
			Body:        []byte(c.bodyHash),
			CreatedAt:   c.s.Clock.Now(),
		}); err != nil {
			c.s.log.Warn("claiming idempotency key failed", zap.String("route", c.metaFP.Route), zap.Error(err))
			return
		}
	}
	if err := c.s.Idem.Put(ctx, c.respFP, idempotency.Record{
		StatusCode:  status,
		ContentType: "application/json",
		Body:        b,
		CreatedAt:   c.s.Clock.Now(),
	}); err != nil {
		c.s.log.Warn("storing idempotent response failed", zap.String("route", c.respFP.Route), zap.Error(err))
	}
}

func hashBody(body any) (string, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
