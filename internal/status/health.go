// SPDX-License-Identifier: MIT

package status

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ManuGH/seatkeeper/internal/jobs"
	xglog "github.com/ManuGH/seatkeeper/internal/log"
)

// Health is the overall or per-component state.
type Health string

const (
	HealthHealthy   Health = "healthy"
	HealthDegraded  Health = "degraded"
	HealthUnhealthy Health = "unhealthy"
)

const checkTimeout = 2 * time.Second

// CheckResult is the outcome of one component check.
type CheckResult struct {
	Status  Health `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Checker inspects one dependency of the run.
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

type pingChecker struct {
	name string
	ping func(ctx context.Context) error
}

// PingChecker reports unhealthy when ping fails.
func PingChecker(name string, ping func(ctx context.Context) error) Checker {
	return pingChecker{name: name, ping: ping}
}

func (c pingChecker) Name() string { return c.name }

func (c pingChecker) Check(ctx context.Context) CheckResult {
	if err := c.ping(ctx); err != nil {
		return CheckResult{Status: HealthUnhealthy, Error: err.Error()}
	}
	return CheckResult{Status: HealthHealthy}
}

type jobsChecker struct {
	tracker *jobs.Tracker
}

// JobsChecker reports degraded once any job has exhausted its attempts.
func JobsChecker(t *jobs.Tracker) Checker {
	return jobsChecker{tracker: t}
}

func (jobsChecker) Name() string { return "jobs" }

func (c jobsChecker) Check(context.Context) CheckResult {
	var exhausted, done int
	snaps := c.tracker.Snapshot()
	for _, s := range snaps {
		switch s.State {
		case jobs.StateExhausted:
			exhausted++
			done++
		case jobs.StateSucceeded:
			done++
		}
	}
	msg := fmt.Sprintf("%d/%d jobs finished", done, len(snaps))
	if exhausted > 0 {
		return CheckResult{Status: HealthDegraded, Message: msg, Error: fmt.Sprintf("%d exhausted", exhausted)}
	}
	return CheckResult{Status: HealthHealthy, Message: msg}
}

// runChecks runs every checker and folds the results into one state.
func (s *Server) runChecks(ctx context.Context) (Health, map[string]CheckResult) {
	overall := HealthHealthy
	if len(s.checkers) == 0 {
		return overall, nil
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	results := make(map[string]CheckResult, len(s.checkers))
	for _, c := range s.checkers {
		res := c.Check(ctx)
		results[c.Name()] = res
		switch {
		case res.Status == HealthUnhealthy:
			overall = HealthUnhealthy
		case res.Status == HealthDegraded && overall == HealthHealthy:
			overall = HealthDegraded
		}
	}
	return overall, results
}

type healthResponse struct {
	Status  Health                 `json:"status"`
	Version string                 `json:"version,omitempty"`
	Uptime  string                 `json:"uptime"`
	Checks  map[string]CheckResult `json:"checks,omitempty"`
}

// handleHealth is the liveness view: always 200, component checks only
// with ?verbose=true.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:  HealthHealthy,
		Version: s.cfg.Version,
		Uptime:  time.Since(s.started).Truncate(time.Second).String(),
	}
	if r.URL.Query().Get("verbose") == "true" {
		resp.Status, resp.Checks = s.runChecks(r.Context())
	}
	writeJSON(w, http.StatusOK, resp)
}

type readyResponse struct {
	Ready  bool                   `json:"ready"`
	Status Health                 `json:"status"`
	Checks map[string]CheckResult `json:"checks,omitempty"`
}

// handleReady answers 503 while any component is unhealthy.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status, checks := s.runChecks(r.Context())
	resp := readyResponse{Ready: status != HealthUnhealthy, Status: status, Checks: checks}

	code := http.StatusOK
	if !resp.Ready {
		code = http.StatusServiceUnavailable
		logger := xglog.WithComponentFromContext(r.Context(), "status")
		logger.Warn().
			Str(xglog.FieldEvent, "readiness.failed").
			Interface("checks", checks).
			Msg("not ready")
	}
	writeJSON(w, code, resp)
}
