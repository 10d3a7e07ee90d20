// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/ManuGH/seatkeeper/internal/cache"
	"github.com/ManuGH/seatkeeper/internal/catalog"
	xglog "github.com/ManuGH/seatkeeper/internal/log"
	"github.com/ManuGH/seatkeeper/internal/plan"
	"github.com/ManuGH/seatkeeper/internal/session"
	"github.com/ManuGH/seatkeeper/internal/window"
	"github.com/google/uuid"
)

// Authenticator logs the session in.
type Authenticator interface {
	Login(ctx context.Context, endpoint string, creds session.Credentials) (session.Identity, error)
}

// CatalogUpdater discovers the catalog.
type CatalogUpdater interface {
	Update(ctx context.Context) (*catalog.Catalog, error)
}

// Runner performs one complete run: login, catalog discovery, then the
// selected plans in order.
type Runner struct {
	Auth        Authenticator
	LoginURL    string
	Credentials session.Credentials
	Discoverer  CatalogUpdater
	// Store is optional; a hit skips discovery for the same target hour.
	Store      *cache.CatalogStore
	Resolver   *window.Resolver
	Controller *Controller
}

// Report summarises a run.
type Report struct {
	RunID            string
	Identity         session.Identity
	Catalog          *catalog.Catalog
	CatalogFromCache bool
	Outcomes         []Outcome
	StartedAt        time.Time
	FinishedAt       time.Time
}

// Succeeded counts jobs that ended in StateSucceeded.
func (r *Report) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.State == StateSucceeded {
			n++
		}
	}
	return n
}

// Run executes plans selected by codes. Login and discovery failures are
// returned as errors; booking failures are reported in the outcomes.
func (r *Runner) Run(ctx context.Context, plans []plan.Plan, codes []string) (*Report, error) {
	selected, err := plan.Select(plans, codes)
	if err != nil {
		return nil, err
	}

	runID := xglog.RunIDFromContext(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = xglog.ContextWithRunID(ctx, runID)
	}
	logger := xglog.WithComponentFromContext(ctx, "jobs")
	report := &Report{RunID: runID, StartedAt: time.Now()}
	logger.Info().
		Str(xglog.FieldEvent, "run.start").
		Int("plans", len(selected)).
		Msg("starting run")

	id, cat, cached, err := r.Prepare(ctx)
	report.Identity = id
	if err != nil {
		return report, err
	}
	report.Catalog = cat
	report.CatalogFromCache = cached

	for _, p := range selected {
		if _, ok := cat.Room(p.Plan.RoomName); !ok {
			logger.Warn().
				Int(xglog.FieldPlanIndex, p.Index).
				Str(xglog.FieldRoom, p.Plan.RoomName).
				Msg("room no longer listed, submitting anyway")
		}
		report.Outcomes = append(report.Outcomes, r.Controller.Run(ctx, p))
		if ctx.Err() != nil {
			break
		}
	}

	report.FinishedAt = time.Now()
	logger.Info().
		Str(xglog.FieldEvent, "run.finish").
		Int("succeeded", report.Succeeded()).
		Int("jobs", len(report.Outcomes)).
		Dur("duration", report.FinishedAt.Sub(report.StartedAt)).
		Msg("run finished")
	return report, ctx.Err()
}

// Prepare logs in and loads the catalog, from the store when it holds one
// for the current target hour. Run calls it; commands that only need the
// catalog call it directly.
func (r *Runner) Prepare(ctx context.Context) (session.Identity, *catalog.Catalog, bool, error) {
	id, err := r.Auth.Login(ctx, r.LoginURL, r.Credentials)
	if err != nil {
		return session.Identity{}, nil, false, fmt.Errorf("login: %w", err)
	}
	cat, cached, err := r.catalog(ctx)
	if err != nil {
		return id, nil, false, fmt.Errorf("catalog: %w", err)
	}
	return id, cat, cached, nil
}

func (r *Runner) catalog(ctx context.Context) (*catalog.Catalog, bool, error) {
	logger := xglog.WithComponentFromContext(ctx, "jobs")
	if r.Store != nil {
		resolver := r.Resolver
		if resolver == nil {
			resolver = window.NewResolver(nil)
		}
		if cat, ok := r.Store.Load(ctx, resolver.Target()); ok {
			logger.Debug().Msg("using cached catalog")
			return cat, true, nil
		}
	}

	cat, err := r.Discoverer.Update(ctx)
	if err != nil {
		return nil, false, err
	}
	if r.Store != nil {
		if err := r.Store.Store(ctx, cat); err != nil {
			logger.Warn().Err(err).Msg("failed to cache catalog")
		}
	}
	return cat, false, nil
}
