// SPDX-License-Identifier: MIT

package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ManuGH/seatkeeper/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, opts Options) *Session {
	t.Helper()
	s, err := New(opts)
	require.NoError(t, err)
	return s
}

func TestLogin_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "2023001", r.PostForm.Get("login_name"))
		assert.Equal(t, "hunter2", r.PostForm.Get("password"))
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"CODE":"ok","DATA":{"uid":"42","user_info":{"name":"Alice"}}}`))
	}))
	defer srv.Close()

	s := newTestSession(t, Options{})
	id, err := s.Login(context.Background(), srv.URL+"/login", Credentials{LoginName: "2023001", Password: "hunter2"})
	require.NoError(t, err)
	assert.Equal(t, Identity{UID: "42", Name: "Alice"}, id)

	stored, ok := s.Identity()
	require.True(t, ok)
	assert.Equal(t, id, stored)
}

func TestLogin_NumericUID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"CODE":"ok","DATA":{"uid":1024,"user_info":{"name":"Bob"}}}`))
	}))
	defer srv.Close()

	s := newTestSession(t, Options{})
	id, err := s.Login(context.Background(), srv.URL, Credentials{})
	require.NoError(t, err)
	assert.Equal(t, "1024", id.UID)
}

func TestLogin_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"CODE":"fail"}`))
	}))
	defer srv.Close()

	s := newTestSession(t, Options{})
	_, err := s.Login(context.Background(), srv.URL, Credentials{LoginName: "x", Password: "y"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthentication)

	_, ok := s.Identity()
	assert.False(t, ok, "failed login must not set an identity")
}

func TestLogin_MissingData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"CODE":"ok"}`))
	}))
	defer srv.Close()

	s := newTestSession(t, Options{})
	_, err := s.Login(context.Background(), srv.URL, Credentials{})
	assert.ErrorIs(t, err, ErrSchemaMismatch)
	_, ok := s.Identity()
	assert.False(t, ok)
}

func TestLogin_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	s := newTestSession(t, Options{Timeout: time.Second})
	_, err := s.Login(context.Background(), url, Credentials{})
	assert.ErrorIs(t, err, ErrTransport)
	_, ok := s.Identity()
	assert.False(t, ok)
}

func TestLogin_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer srv.Close()

	s := newTestSession(t, Options{})
	_, err := s.Login(context.Background(), srv.URL, Credentials{})
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestGetJSON_AppliesHeadersAndDefaultParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "zh-CN", r.Header.Get("Accept-Language"))
		assert.Equal(t, "seatkeeper-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "1", r.URL.Query().Get("LAB_JSON"))
		// explicit query wins over the session default
		assert.Equal(t, "explicit", r.URL.Query().Get("mode"))
		_, _ = w.Write([]byte(`{"value":7}`))
	}))
	defer srv.Close()

	s := newTestSession(t, Options{
		Headers:   map[string]string{"Accept-Language": "zh-CN"},
		Params:    map[string]string{"LAB_JSON": "1", "mode": "default"},
		UserAgent: "seatkeeper-test",
	})

	var out struct {
		Value int `json:"value"`
	}
	require.NoError(t, s.GetJSON(context.Background(), "query", srv.URL+"/x?mode=explicit", &out))
	assert.Equal(t, 7, out.Value)
}

func TestSession_PersistsCookies(t *testing.T) {
	var sawCookie bool
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, _ *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "PHPSESSID", Value: "abc", Path: "/"})
		_, _ = w.Write([]byte(`{"CODE":"ok","DATA":{"uid":"1","user_info":{"name":"A"}}}`))
	})
	mux.HandleFunc("/rooms", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("PHPSESSID"); err == nil && c.Value == "abc" {
			sawCookie = true
		}
		_, _ = w.Write([]byte(`{}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := newTestSession(t, Options{})
	_, err := s.Login(context.Background(), srv.URL+"/login", Credentials{})
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, s.GetJSON(context.Background(), "query_rooms", srv.URL+"/rooms", &out))
	assert.True(t, sawCookie, "session cookie must be sent after login")
}

func TestDo_HTTPErrorIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"password=topsecret"}`))
	}))
	defer srv.Close()

	s := newTestSession(t, Options{})
	var out map[string]any
	err := s.GetJSON(context.Background(), "query_rooms", srv.URL, &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)

	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusBadGateway, ue.Status)
	assert.Equal(t, "query_rooms", ue.Operation)
	assert.NotContains(t, err.Error(), "topsecret")
	assert.Equal(t, "http_5xx", ErrorClass(err))
}

func TestDo_InvalidURL(t *testing.T) {
	s := newTestSession(t, Options{})
	var out map[string]any
	err := s.GetJSON(context.Background(), "query_rooms", "/relative/only", &out)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestDo_WaitsOnPacer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	s := newTestSession(t, Options{Pacer: ratelimit.NewPacer("session", 40*time.Millisecond)})
	var out map[string]any
	start := time.Now()
	require.NoError(t, s.GetJSON(context.Background(), "a", srv.URL, &out))
	require.NoError(t, s.GetJSON(context.Background(), "b", srv.URL, &out))
	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
}
