// SPDX-License-Identifier: MIT

package session

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"regexp"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrAuthentication = errors.New("upstream: authentication rejected")
	ErrSchemaMismatch = errors.New("upstream: response does not match expected schema")
	ErrTransport      = errors.New("upstream: transport failure")
)

const maxErrorBody = 256

// UpstreamError wraps a sentinel with request context.
type UpstreamError struct {
	Sentinel  error
	Operation string
	Status    int
	Body      string
	Err       error // lower-level cause (net.Error, json error, ...)
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("session: %s: %v", e.Operation, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Sentinel, e.Err}
	}
	return []error{e.Sentinel}
}

var secretPattern = regexp.MustCompile(`(?i)("?(?:password|passwd|token|sid|login_name)"?\s*[:=]\s*"?)([^"&\s,}]+)`)

func redact(body []byte) string {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return secretPattern.ReplaceAllString(string(body), "${1}[REDACTED]")
}

func newError(sentinel error, op string, status int, body []byte, cause error) *UpstreamError {
	return &UpstreamError{
		Sentinel:  sentinel,
		Operation: op,
		Status:    status,
		Body:      redact(body),
		Err:       cause,
	}
}

// ErrorClass maps an error to a low-cardinality label for metrics and logs.
func ErrorClass(err error) string {
	if err == nil {
		return "ok"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return "timeout"
		}
		return "network"
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		switch {
		case ue.Status >= http.StatusInternalServerError:
			return "http_5xx"
		case ue.Status >= http.StatusBadRequest:
			return "http_4xx"
		case errors.Is(ue.Sentinel, ErrSchemaMismatch):
			return "decode"
		case errors.Is(ue.Sentinel, ErrAuthentication):
			return "auth"
		}
	}
	return "error"
}

// SchemaMismatch reports a response that decoded but lacks an expected structure.
func SchemaMismatch(op string, detail error) error {
	return newError(ErrSchemaMismatch, op, 0, nil, detail)
}
