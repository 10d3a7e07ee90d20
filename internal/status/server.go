// SPDX-License-Identifier: MIT

// Package status serves health, metrics and job progress while a run is
// in flight.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ManuGH/seatkeeper/internal/jobs"
	xglog "github.com/ManuGH/seatkeeper/internal/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

// Config configures the status server.
type Config struct {
	Listen string
	// RequestLimit per IP per minute; 0 uses 120.
	RequestLimit int
	Version      string
}

// Server exposes read-only views of a run.
type Server struct {
	cfg      Config
	tracker  *jobs.Tracker
	checkers []Checker
	started  time.Time
	router   chi.Router
}

// New builds the server. tracker may be nil when no jobs are published;
// checkers feed /readyz and the verbose /healthz.
func New(cfg Config, tracker *jobs.Tracker, checkers ...Checker) *Server {
	if cfg.RequestLimit <= 0 {
		cfg.RequestLimit = 120
	}
	s := &Server{cfg: cfg, tracker: tracker, checkers: checkers, started: time.Now()}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestID)
	r.Use(observe)
	r.Use(rateLimit(s.cfg.RequestLimit, time.Minute))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/jobs", s.handleJobs)
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

type jobsResponse struct {
	Jobs []jobs.JobSnapshot `json:"jobs"`
}

func (s *Server) handleJobs(w http.ResponseWriter, _ *http.Request) {
	resp := jobsResponse{Jobs: []jobs.JobSnapshot{}}
	if s.tracker != nil {
		resp.Jobs = s.tracker.Snapshot()
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Run serves on cfg.Listen until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("status: listen %s: %w", s.cfg.Listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	logger := xglog.WithComponentFromContext(ctx, "status")

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", ln.Addr().String()).Msg("status server listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("status: shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info().Msg("status server stopped")
	return nil
}
