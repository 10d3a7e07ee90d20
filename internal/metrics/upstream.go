// SPDX-License-Identifier: MIT

// Package metrics holds the prometheus collectors for discovery and booking.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	upstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "seatkeeper_upstream_request_duration_seconds",
		Help:    "Duration of requests to the reservation service",
		Buckets: prometheus.ExponentialBuckets(0.05, 2.0, 8),
	}, []string{"operation", "status"})

	upstreamRequestFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seatkeeper_upstream_request_failures_total",
		Help: "Failed requests to the reservation service by error class",
	}, []string{"operation", "error_class"}) // error_class=timeout|network|http_4xx|http_5xx|decode|error

	loginTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seatkeeper_login_total",
		Help: "Login attempts by result",
	}, []string{"result"}) // result=ok|rejected|error
)

// RecordUpstreamRequest observes one request. status is 0 when no response arrived.
func RecordUpstreamRequest(operation string, status int, duration time.Duration) {
	upstreamRequestDuration.WithLabelValues(operation, strconv.Itoa(status)).Observe(duration.Seconds())
}

// RecordUpstreamFailure counts a failed request.
func RecordUpstreamFailure(operation, errorClass string) {
	upstreamRequestFailures.WithLabelValues(operation, errorClass).Inc()
}

// RecordLogin counts a login outcome.
func RecordLogin(result string) {
	loginTotal.WithLabelValues(result).Inc()
}
