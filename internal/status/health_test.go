// SPDX-License-Identifier: MIT

package status

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ManuGH/seatkeeper/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthz_Verbose(t *testing.T) {
	tr := jobs.NewTracker()
	tr.Update(jobs.JobSnapshot{PlanIndex: 0, State: jobs.StateSucceeded})
	tr.Update(jobs.JobSnapshot{PlanIndex: 1, State: jobs.StateExhausted})
	s := New(Config{}, tr,
		PingChecker("history", func(context.Context) error { return nil }),
		JobsChecker(tr),
	)

	rec := get(t, s, "/healthz?verbose=true")
	require.Equal(t, http.StatusOK, rec.Code)

	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, HealthDegraded, body.Status)
	assert.Equal(t, HealthHealthy, body.Checks["history"].Status)
	assert.Equal(t, CheckResult{Status: HealthDegraded, Message: "2/2 jobs finished", Error: "1 exhausted"}, body.Checks["jobs"])
}

func TestHealthz_LivenessIgnoresFailures(t *testing.T) {
	s := New(Config{}, nil, PingChecker("cache", func(context.Context) error { return errors.New("connection refused") }))

	rec := get(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, s, "/healthz?verbose=true")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"unhealthy"`)
}

func TestReadyz(t *testing.T) {
	tests := []struct {
		name     string
		checkers []Checker
		code     int
		status   Health
	}{
		{"no checkers", nil, http.StatusOK, HealthHealthy},
		{"healthy", []Checker{PingChecker("cache", func(context.Context) error { return nil })}, http.StatusOK, HealthHealthy},
		{"degraded is ready", []Checker{JobsChecker(exhaustedTracker())}, http.StatusOK, HealthDegraded},
		{"unhealthy", []Checker{
			JobsChecker(exhaustedTracker()),
			PingChecker("cache", func(context.Context) error { return errors.New("down") }),
		}, http.StatusServiceUnavailable, HealthUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, New(Config{}, nil, tt.checkers...), "/readyz")
			assert.Equal(t, tt.code, rec.Code)

			var body readyResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.status, body.Status)
			assert.Equal(t, tt.code == http.StatusOK, body.Ready)
			assert.Len(t, body.Checks, len(tt.checkers))
		})
	}
}

func TestPingChecker_HonoursTimeout(t *testing.T) {
	s := New(Config{}, nil, PingChecker("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	status, checks := s.runChecks(context.Background())
	assert.Equal(t, HealthUnhealthy, status)
	assert.Contains(t, checks["slow"].Error, "deadline exceeded")
}

func exhaustedTracker() *jobs.Tracker {
	tr := jobs.NewTracker()
	tr.Update(jobs.JobSnapshot{PlanIndex: 0, State: jobs.StateExhausted})
	return tr
}
