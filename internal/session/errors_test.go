// SPDX-License-Identifier: MIT

package session

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpstreamError_Sentinels(t *testing.T) {
	cases := []struct {
		name     string
		sentinel error
		status   int
		cause    error
		class    string
	}{
		{name: "HTTP 500", sentinel: ErrTransport, status: http.StatusInternalServerError, class: "http_5xx"},
		{name: "HTTP 403", sentinel: ErrTransport, status: http.StatusForbidden, class: "http_4xx"},
		{name: "network timeout", sentinel: ErrTransport, cause: &net.DNSError{IsTimeout: true}, class: "timeout"},
		{name: "context deadline", sentinel: ErrTransport, cause: context.DeadlineExceeded, class: "timeout"},
		{name: "network", sentinel: ErrTransport, cause: &net.OpError{Op: "dial", Err: errors.New("refused")}, class: "network"},
		{name: "decode", sentinel: ErrSchemaMismatch, class: "decode"},
		{name: "auth", sentinel: ErrAuthentication, class: "auth"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := newError(tc.sentinel, "test", tc.status, nil, tc.cause)
			assert.ErrorIs(t, err, tc.sentinel)
			if tc.cause != nil {
				assert.ErrorIs(t, err, tc.cause)
			}
			assert.Equal(t, tc.class, ErrorClass(err))

			var ue *UpstreamError
			require.True(t, errors.As(err, &ue))
			assert.Equal(t, "test", ue.Operation)
			assert.Equal(t, tc.status, ue.Status)
		})
	}
}

func TestUpstreamError_Redaction(t *testing.T) {
	body := []byte(`{"login_name":"2023001","password":"my_secret_pass"} token=1234-5678 sid=secret_123`)
	msg := newError(ErrAuthentication, "login", 0, body, nil).Error()

	for _, secret := range []string{"2023001", "my_secret_pass", "1234-5678", "secret_123"} {
		assert.NotContains(t, msg, secret)
	}
	assert.Contains(t, msg, "[REDACTED]")
}

func TestUpstreamError_TruncatesBody(t *testing.T) {
	body := []byte(strings.Repeat("x", 4*maxErrorBody))
	err := newError(ErrTransport, "op", 502, body, nil)
	assert.Len(t, err.Body, maxErrorBody)
}

func TestErrorClass_Nil(t *testing.T) {
	assert.Equal(t, "ok", ErrorClass(nil))
	assert.Equal(t, "error", ErrorClass(errors.New("boom")))
}

func TestFlexString(t *testing.T) {
	var v struct {
		A FlexString `json:"a"`
		B FlexString `json:"b"`
		C FlexString `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"s-1","b":12345,"c":null}`), &v))
	assert.Equal(t, FlexString("s-1"), v.A)
	assert.Equal(t, "12345", v.B.String())
	assert.Empty(t, v.C)

	var bad FlexString
	assert.Error(t, json.Unmarshal([]byte(`true`), &bad))
}
