// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ManuGH/seatkeeper/internal/booking"
	"github.com/ManuGH/seatkeeper/internal/cache"
	"github.com/ManuGH/seatkeeper/internal/catalog"
	"github.com/ManuGH/seatkeeper/internal/config"
	"github.com/ManuGH/seatkeeper/internal/history"
	"github.com/ManuGH/seatkeeper/internal/jobs"
	xglog "github.com/ManuGH/seatkeeper/internal/log"
	"github.com/ManuGH/seatkeeper/internal/ratelimit"
	"github.com/ManuGH/seatkeeper/internal/session"
	"github.com/ManuGH/seatkeeper/internal/status"
	"github.com/ManuGH/seatkeeper/internal/telemetry"
	"github.com/ManuGH/seatkeeper/internal/window"
)

// clock is replaced in tests.
var clock window.Clock = window.RealClock{}

// loadConfig loads path and reconfigures the global logger from it.
func loadConfig(path string) (*config.Config, error) {
	loader := config.NewLoader(path)
	cfg, err := loader.Load()
	if err != nil {
		if loader.Created {
			return nil, fmt.Errorf("created default config %s, set user_info or %s/%s: %w",
				path, config.EnvUserID, config.EnvPassword, err)
		}
		return nil, err
	}

	xglog.Configure(xglog.Config{
		Level:   cfg.Log.Level,
		Output:  os.Stderr,
		Service: "seatkeeper",
		Version: version,
	})
	logger := xglog.WithComponent("cli")
	logger.Info().
		Str(xglog.FieldEvent, "config.loaded").
		Str("path", path).
		Int("plans", len(cfg.Plans)).
		Msg("loaded configuration")
	return cfg, nil
}

// workflow holds the collaborators of one invocation.
type workflow struct {
	cfg      *config.Config
	session  *session.Session
	resolver *window.Resolver
	runner   *jobs.Runner
	tracker  *jobs.Tracker
	ledger   *history.Ledger
	checkers []status.Checker

	closers []func() error
}

// newWorkflow wires session, discovery, cache, history and the job
// controller from cfg. The caller must call close.
func newWorkflow(ctx context.Context, cfg *config.Config) (_ *workflow, err error) {
	w := &workflow{cfg: cfg, tracker: jobs.NewTracker()}
	w.checkers = append(w.checkers, status.JobsChecker(w.tracker))
	defer func() {
		if err != nil {
			_ = w.close()
		}
	}()

	provider, err := telemetry.NewProvider(ctx, cfg.TelemetryConfig(version))
	if err != nil {
		return nil, err
	}
	w.closers = append(w.closers, func() error {
		return provider.Shutdown(context.WithoutCancel(ctx))
	})

	w.session, err = session.New(cfg.SessionOptions())
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	w.resolver = window.NewResolver(clock)

	roomInterval, seatInterval := cfg.PacingIntervals()
	disc := catalog.NewDiscoverer(w.session, cfg.CatalogEndpoints(), catalog.Options{
		RoomPacer: ratelimit.NewPacer("catalog_rooms", roomInterval),
		SeatPacer: ratelimit.NewPacer("catalog_seats", seatInterval),
		Resolver:  w.resolver,
	})

	cacheCfg := cfg.CacheConfig()
	c, err := cache.New(ctx, cacheCfg, xglog.WithComponent("cache"))
	if err != nil {
		return nil, err
	}
	if closer, ok := c.(io.Closer); ok {
		w.closers = append(w.closers, closer.Close)
	}
	if rc, ok := c.(*cache.RedisCache); ok {
		w.checkers = append(w.checkers, status.PingChecker("cache", rc.HealthCheck))
	}

	opts := []jobs.Option{jobs.WithTracker(w.tracker)}
	if cfg.History.Path != "" {
		w.ledger, err = history.Open(cfg.History.Path, history.DefaultConfig())
		if err != nil {
			return nil, err
		}
		w.closers = append(w.closers, w.ledger.Close)
		opts = append(opts, jobs.WithRecorder(w.ledger))
		w.checkers = append(w.checkers, status.PingChecker("history", w.ledger.Ping))
	}

	w.runner = &jobs.Runner{
		Auth:        w.session,
		LoginURL:    cfg.URLs.Login,
		Credentials: cfg.Credentials(),
		Discoverer:  disc,
		Store:       cache.NewCatalogStore(c, cacheCfg.TTL),
		Resolver:    w.resolver,
		Controller:  jobs.NewController(booking.NewExecutor(w.session, cfg.URLs.BookSeat), cfg.JobParams(), opts...),
	}
	return w, nil
}

// close releases resources in reverse order of acquisition.
func (w *workflow) close() error {
	var errs []error
	for i := len(w.closers) - 1; i >= 0; i-- {
		if err := w.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	w.closers = nil
	return errors.Join(errs...)
}
