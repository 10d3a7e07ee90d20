// SPDX-License-Identifier: MIT

package httpx

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func TestNew_DefaultTimeoutAndTransport(t *testing.T) {
	client, err := New(Options{TrustEnv: true})
	require.NoError(t, err)
	assert.Equal(t, defaultClientTimeout, client.Timeout)

	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok, "transport type = %T", client.Transport)
	assert.Equal(t, defaultMaxIdleConns, transport.MaxIdleConns)
	assert.Equal(t, defaultMaxIdleConnsPerHost, transport.MaxIdleConnsPerHost)
	assert.Equal(t, defaultIdleConnTimeout, transport.IdleConnTimeout)
	assert.NotNil(t, transport.Proxy)
	assert.Nil(t, client.Jar)
}

func TestNew_CapsDialAndHeaderTimeouts(t *testing.T) {
	client, err := New(Options{Timeout: 60 * time.Second})
	require.NoError(t, err)
	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, defaultDialTimeout, transport.TLSHandshakeTimeout)
	assert.Equal(t, defaultResponseHeaderTimeout, transport.ResponseHeaderTimeout)
}

func TestNew_SessionOptions(t *testing.T) {
	client, err := New(Options{
		Timeout:            2 * time.Second,
		InsecureSkipVerify: true,
		TrustEnv:           false,
		Cookies:            true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, client.Timeout)
	assert.NotNil(t, client.Jar)

	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Nil(t, transport.Proxy, "trust_env=false must ignore environment proxies")
	require.NotNil(t, transport.TLSClientConfig)
	assert.True(t, transport.TLSClientConfig.InsecureSkipVerify)
	assert.Equal(t, 2*time.Second, transport.ResponseHeaderTimeout)
}

func TestNew_VerifyKeepsDefaultTLS(t *testing.T) {
	client, err := New(Options{TrustEnv: true})
	require.NoError(t, err)

	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Nil(t, transport.TLSClientConfig)
	assert.NotNil(t, transport.Proxy)
}

func TestNew_TraceWrapsTransport(t *testing.T) {
	client, err := New(Options{Trace: true})
	require.NoError(t, err)
	_, ok := client.Transport.(*otelhttp.Transport)
	assert.True(t, ok, "transport type = %T", client.Transport)
}
