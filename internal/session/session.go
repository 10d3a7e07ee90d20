// SPDX-License-Identifier: MIT

// Package session owns the authenticated HTTP session with the reservation service.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	xglog "github.com/ManuGH/seatkeeper/internal/log"
	"github.com/ManuGH/seatkeeper/internal/metrics"
	"github.com/ManuGH/seatkeeper/internal/platform/httpx"
	"github.com/ManuGH/seatkeeper/internal/ratelimit"
	"github.com/ManuGH/seatkeeper/internal/telemetry"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "seatkeeper"
	maxResponseBytes = 8 << 20
)

// Options configures the session. All options are applied in New before the
// session is handed out.
type Options struct {
	Headers   map[string]string
	Params    map[string]string // default query parameters added to every request
	Verify    bool              // verify TLS certificates
	TrustEnv  bool              // honour proxy settings from the environment
	Timeout   time.Duration
	UserAgent string
	Trace     bool

	// Pacer, when set, is waited on before every request.
	Pacer *ratelimit.Pacer
	// HTTPClient overrides the client built from the options above.
	HTTPClient *http.Client
}

// Credentials are sent as the login form body.
type Credentials struct {
	LoginName string
	Password  string
}

// Identity is the authenticated user.
type Identity struct {
	UID  string
	Name string
}

// Session is a configured, optionally authenticated, HTTP session.
type Session struct {
	http    *http.Client
	headers http.Header
	params  url.Values
	pacer   *ratelimit.Pacer
	logger  zerolog.Logger

	mu       sync.RWMutex
	identity *Identity
}

// New builds a session from opts.
func New(opts Options) (*Session, error) {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		var err error
		client, err = httpx.New(httpx.Options{
			Timeout:            timeout,
			InsecureSkipVerify: !opts.Verify,
			TrustEnv:           opts.TrustEnv,
			Cookies:            true,
			Trace:              opts.Trace,
		})
		if err != nil {
			return nil, fmt.Errorf("session: build client: %w", err)
		}
	}

	headers := make(http.Header, len(opts.Headers)+1)
	for k, v := range opts.Headers {
		headers.Set(k, v)
	}
	if headers.Get("User-Agent") == "" {
		ua := strings.TrimSpace(opts.UserAgent)
		if ua == "" {
			ua = defaultUserAgent
		}
		headers.Set("User-Agent", ua)
	}

	params := make(url.Values, len(opts.Params))
	for k, v := range opts.Params {
		params.Set(k, v)
	}

	return &Session{
		http:    client,
		headers: headers,
		params:  params,
		pacer:   opts.Pacer,
		logger:  xglog.WithComponent("session"),
	}, nil
}

// Identity returns the logged-in identity, if any.
func (s *Session) Identity() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return Identity{}, false
	}
	return *s.identity, true
}

type loginResponse struct {
	Code    string `json:"CODE"`
	Message string `json:"MESSAGE"`
	Data    *struct {
		UID      FlexString `json:"uid"`
		UserInfo *struct {
			Name string `json:"name"`
		} `json:"user_info"`
	} `json:"DATA"`
}

// Login posts creds to endpoint. On CODE "ok" the identity is stored and
// returned; the session cookies now carry the authentication. Any other
// outcome leaves the session unauthenticated and returns an error wrapping
// ErrAuthentication, ErrTransport or ErrSchemaMismatch.
func (s *Session) Login(ctx context.Context, endpoint string, creds Credentials) (Identity, error) {
	form := url.Values{}
	form.Set("login_name", creds.LoginName)
	form.Set("password", creds.Password)

	var res loginResponse
	if err := s.PostForm(ctx, "login", endpoint, form, &res); err != nil {
		metrics.RecordLogin("error")
		return Identity{}, err
	}

	if res.Code != "ok" {
		metrics.RecordLogin("rejected")
		s.logger.Warn().
			Str(xglog.FieldEvent, "login.rejected").
			Str(xglog.FieldCode, res.Code).
			Msg("login rejected by service")
		return Identity{}, newError(ErrAuthentication, "login", 0, []byte(res.Message), nil)
	}
	if res.Data == nil || res.Data.UID == "" || res.Data.UserInfo == nil {
		metrics.RecordLogin("error")
		return Identity{}, newError(ErrSchemaMismatch, "login", 0, nil, fmt.Errorf("missing DATA.uid or DATA.user_info"))
	}

	id := Identity{UID: res.Data.UID.String(), Name: res.Data.UserInfo.Name}
	s.mu.Lock()
	s.identity = &id
	s.mu.Unlock()

	metrics.RecordLogin("ok")
	s.logger.Info().
		Str(xglog.FieldEvent, "login.ok").
		Str(xglog.FieldUID, id.UID).
		Msg("logged in")
	return id, nil
}

// GetJSON issues a GET and decodes the JSON body into v.
func (s *Session) GetJSON(ctx context.Context, op, rawURL string, v any) error {
	return s.do(ctx, op, http.MethodGet, rawURL, nil, v)
}

// PostForm issues a form-encoded POST and decodes the JSON body into v.
func (s *Session) PostForm(ctx context.Context, op, rawURL string, form url.Values, v any) error {
	return s.do(ctx, op, http.MethodPost, rawURL, form, v)
}

func (s *Session) do(ctx context.Context, op, method, rawURL string, form url.Values, v any) error {
	u, err := s.withDefaultParams(rawURL)
	if err != nil {
		return newError(ErrTransport, op, 0, nil, err)
	}

	if err := s.pacer.Wait(ctx); err != nil {
		return newError(ErrTransport, op, 0, nil, err)
	}

	ctx, span := telemetry.Tracer("seatkeeper.session").Start(ctx, "seatkeeper.session."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return newError(ErrTransport, op, 0, nil, err)
	}
	for k, vals := range s.headers {
		req.Header[k] = append([]string(nil), vals...)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	start := time.Now()
	resp, err := s.http.Do(req)
	duration := time.Since(start)
	if err != nil {
		metrics.RecordUpstreamRequest(op, 0, duration)
		wrapped := newError(ErrTransport, op, 0, nil, err)
		metrics.RecordUpstreamFailure(op, ErrorClass(wrapped))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return wrapped
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.RecordUpstreamRequest(op, resp.StatusCode, duration)
	span.SetAttributes(telemetry.HTTPAttributes(method, u.Path, op, resp.StatusCode)...)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		wrapped := newError(ErrTransport, op, resp.StatusCode, nil, err)
		metrics.RecordUpstreamFailure(op, ErrorClass(wrapped))
		span.SetStatus(codes.Error, err.Error())
		return wrapped
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		wrapped := newError(ErrTransport, op, resp.StatusCode, data, nil)
		metrics.RecordUpstreamFailure(op, ErrorClass(wrapped))
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
		return wrapped
	}

	if err := json.Unmarshal(data, v); err != nil {
		wrapped := newError(ErrSchemaMismatch, op, 0, data, err)
		metrics.RecordUpstreamFailure(op, "decode")
		span.SetStatus(codes.Error, "decode")
		return wrapped
	}

	s.logger.Debug().
		Str(xglog.FieldOperation, op).
		Str(xglog.FieldURL, u.Path).
		Int(xglog.FieldStatus, resp.StatusCode).
		Dur("duration", duration).
		Msg("upstream request")
	span.SetStatus(codes.Ok, "")
	return nil
}

// withDefaultParams adds the session's default query parameters unless the
// URL already sets the same key.
func (s *Session) withDefaultParams(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid url %q: scheme and host required", rawURL)
	}
	if len(s.params) == 0 {
		return u, nil
	}
	q := u.Query()
	for k, vals := range s.params {
		if _, ok := q[k]; ok {
			continue
		}
		q[k] = append([]string(nil), vals...)
	}
	u.RawQuery = q.Encode()
	return u, nil
}
