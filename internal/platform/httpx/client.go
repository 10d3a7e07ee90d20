// SPDX-License-Identifier: MIT

// Package httpx builds the HTTP clients used to talk to the reservation service.
package httpx

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/publicsuffix"
)

const (
	defaultClientTimeout         = 15 * time.Second
	defaultDialTimeout           = 5 * time.Second
	defaultResponseHeaderTimeout = 10 * time.Second
	defaultIdleConnTimeout       = 30 * time.Second
	defaultExpectContinueTimeout = 1 * time.Second
	defaultMaxIdleConns          = 16
	defaultMaxIdleConnsPerHost   = 4
)

// Options configures a session client.
type Options struct {
	Timeout time.Duration
	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool
	// TrustEnv honours HTTP_PROXY/HTTPS_PROXY/NO_PROXY from the environment.
	TrustEnv bool
	// Cookies attaches a public-suffix aware cookie jar.
	Cookies bool
	// Trace wraps the transport with OpenTelemetry instrumentation.
	Trace bool
}

// New returns an HTTP client configured from opts. The client is fully built
// before it is returned; on error nothing is returned.
func New(opts Options) (*http.Client, error) {
	client := &http.Client{Timeout: normalizeTimeout(opts.Timeout)}

	var rt http.RoundTripper = newTransport(opts)
	if opts.Trace {
		rt = otelhttp.NewTransport(rt)
	}
	client.Transport = rt

	if opts.Cookies {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("httpx: cookie jar: %w", err)
		}
		client.Jar = jar
	}
	return client, nil
}

func normalizeTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return defaultClientTimeout
	}
	return timeout
}

func newTransport(opts Options) *http.Transport {
	timeout := normalizeTimeout(opts.Timeout)

	dialTimeout := timeout
	if dialTimeout > defaultDialTimeout {
		dialTimeout = defaultDialTimeout
	}

	responseHeaderTimeout := timeout
	if responseHeaderTimeout > defaultResponseHeaderTimeout {
		responseHeaderTimeout = defaultResponseHeaderTimeout
	}

	t := &http.Transport{
		DialContext:           (&net.Dialer{Timeout: dialTimeout, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          defaultMaxIdleConns,
		MaxIdleConnsPerHost:   defaultMaxIdleConnsPerHost,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   dialTimeout,
		ResponseHeaderTimeout: responseHeaderTimeout,
		ExpectContinueTimeout: defaultExpectContinueTimeout,
	}
	if opts.TrustEnv {
		t.Proxy = http.ProxyFromEnvironment
	}
	if opts.InsecureSkipVerify {
		// #nosec G402 -- operator opted out of verification (session.verify: false)
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return t
}
