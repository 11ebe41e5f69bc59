// Package hosted talks to the managed data/auth service over its REST API.
//
// Data lives in four collections under /rest/v1 and password auth under /auth/v1. Every call
// carries the project API key; non-2xx responses are returned as *backend.Error.
package hosted

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/backend"
)

// Collection names.
const (
	Bulletins         = "bulletins"
	ActivityHierarchy = "activity_hierarchy"
	Notes             = "notes"
	UserPermissions   = "user_permissions"
)

// Postgres unique_violation, passed through by the REST layer on duplicate inserts.
const uniqueViolationCode = "23505"

type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	RetryCount int
}

type Client struct {
	http   *resty.Client
	apiKey string
	log    *zap.Logger
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	hc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(200*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		AddRetryCondition(retryIdempotent).
		SetHeader("Accept", "application/json").
		SetHeader("apikey", cfg.APIKey)
	return &Client{http: hc, apiKey: cfg.APIKey, log: log}
}

// retryIdempotent retries transport failures of idempotent requests only. A POST whose response
// was lost may already have been applied; sending it again would turn a stored row into a
// duplicate-key rejection.
func retryIdempotent(resp *resty.Response, err error) bool {
	if err == nil || resp == nil || resp.Request == nil {
		return false
	}
	switch resp.Request.Method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// Rest returns a request against the data API, authorized with the project key.
func (c *Client) Rest(ctx context.Context) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey)
}

// Auth returns a request against the auth API. The caller sets the bearer token, if any.
func (c *Client) Auth(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx)
}

// RestPath is the data API path of a collection.
func RestPath(collection string) string {
	return "/rest/v1/" + collection
}

// Check turns a transport failure or non-2xx response into an error and logs it.
func (c *Client) Check(op string, resp *resty.Response, err error) error {
	if err != nil {
		c.log.Error("hosted backend call failed", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if resp.IsSuccess() {
		return nil
	}
	be := decodeError(resp)
	c.log.Warn("hosted backend returned error",
		zap.String("op", op),
		zap.Int("status_code", be.Status),
		zap.String("msg", be.Message),
	)
	return be
}

// IsConflict reports whether err is a duplicate-key rejection.
func IsConflict(err error) bool {
	var be *backend.Error
	if !errors.As(err, &be) {
		return false
	}
	return be.Status == http.StatusConflict
}

// errorBody covers the REST layer's {message,code} and the auth layer's
// {error,error_description} / {msg,error_code} shapes.
type errorBody struct {
	Message          string `json:"message"`
	Code             string `json:"code"`
	Msg              string `json:"msg"`
	ErrorCode        string `json:"error_code"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func decodeError(resp *resty.Response) *backend.Error {
	be := &backend.Error{Status: resp.StatusCode()}
	var body errorBody
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		for _, m := range []string{body.Message, body.Msg, body.ErrorDescription, body.Error} {
			if m != "" {
				be.Message = m
				break
			}
		}
		if body.Code == uniqueViolationCode {
			be.Status = http.StatusConflict
		}
	}
	if be.Message == "" {
		be.Message = strings.TrimSpace(string(resp.Body()))
	}
	if be.Message == "" {
		be.Message = http.StatusText(resp.StatusCode())
	}
	return be
}

// authErrorCode extracts the auth layer's machine-readable error code, if any.
func authErrorCode(resp *resty.Response) string {
	var body errorBody
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return ""
	}
	if body.ErrorCode != "" {
		return body.ErrorCode
	}
	return body.Error
}
