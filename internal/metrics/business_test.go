// SPDX-License-Identifier: MIT

package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetCatalogSize(t *testing.T) {
	SetCatalogSize(2, 5, 120)
	assert.Equal(t, 2.0, testutil.ToFloat64(catalogRooms))
	assert.Equal(t, 5.0, testutil.ToFloat64(catalogFloors))
	assert.Equal(t, 120.0, testutil.ToFloat64(catalogSeats))
}

func TestRecordBookingAttempt(t *testing.T) {
	before := testutil.ToFloat64(bookingAttempts.WithLabelValues("rejected"))
	RecordBookingAttempt("rejected")
	RecordBookingAttempt("rejected")
	assert.Equal(t, before+2, testutil.ToFloat64(bookingAttempts.WithLabelValues("rejected")))
}

func TestRecordCatalogCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(catalogCacheLookups.WithLabelValues("memory", "hit"))
	misses := testutil.ToFloat64(catalogCacheLookups.WithLabelValues("memory", "miss"))

	RecordCatalogCacheLookup("memory", true)
	RecordCatalogCacheLookup("memory", false)

	assert.Equal(t, hits+1, testutil.ToFloat64(catalogCacheLookups.WithLabelValues("memory", "hit")))
	assert.Equal(t, misses+1, testutil.ToFloat64(catalogCacheLookups.WithLabelValues("memory", "miss")))
}

func TestPromhttpExposure(t *testing.T) {
	RecordUpstreamRequest("login", 200, 120*time.Millisecond)
	RecordUpstreamFailure("book_seat", "timeout")
	RecordLogin("ok")
	RecordBookingJob("succeeded")
	IncCatalogDiscoveryError("rooms")

	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body := rec.Body.String()
	for _, name := range []string{
		"seatkeeper_upstream_request_duration_seconds",
		"seatkeeper_upstream_request_failures_total",
		"seatkeeper_login_total",
		"seatkeeper_booking_jobs_total",
		"seatkeeper_catalog_discovery_errors_total",
	} {
		assert.True(t, strings.Contains(body, name), "missing %s", name)
	}
}
