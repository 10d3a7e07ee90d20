// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ManuGH/seatkeeper/internal/jobs"
	xglog "github.com/ManuGH/seatkeeper/internal/log"
	"github.com/ManuGH/seatkeeper/internal/status"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Exit codes of the run command.
const (
	exitOK        = 0
	exitError     = 1
	exitUsage     = 2
	exitExhausted = 3
)

func runBookCLI(ctx context.Context, args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("seatkeeper run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var configPath, planCodes, listen string
	fs.StringVar(&configPath, "config", defaultConfigPath, "path to YAML configuration file")
	fs.StringVar(&planCodes, "plan", "", "comma-separated plan codes, overrides planCode")
	fs.StringVar(&listen, "status-listen", "", "status server address, overrides status.listen")

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	logger := xglog.WithComponent("cli")
	cfg, err := loadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str(xglog.FieldEvent, "config.load_failed").Str("path", configPath).Msg("failed to load configuration")
		return exitError
	}
	codes := cfg.PlanCode
	if planCodes != "" {
		codes = splitList(planCodes)
	}
	if listen != "" {
		cfg.Status.Listen = listen
	}

	w, err := newWorkflow(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialise")
		return exitError
	}
	defer func() {
		if err := w.close(); err != nil {
			logger.Warn().Err(err).Msg("shutdown incomplete")
		}
	}()

	ctx = xglog.ContextWithRunID(ctx, uuid.NewString())
	report, err := runJobs(ctx, w, codes)
	if report != nil {
		printReport(stdout, report)
	}
	if err != nil {
		logger.Error().Err(err).Str(xglog.FieldRunID, xglog.RunIDFromContext(ctx)).Msg("run failed")
		return exitError
	}
	if report.Succeeded() < len(report.Outcomes) {
		return exitExhausted
	}
	return exitOK
}

// runJobs runs the selected plans. When a status address is configured the
// status server runs alongside and stops once the run is over.
func runJobs(ctx context.Context, w *workflow, codes []string) (*jobs.Report, error) {
	if w.cfg.Status.Listen == "" {
		return w.runner.Run(ctx, w.cfg.Plans, codes)
	}

	srv := status.New(status.Config{Listen: w.cfg.Status.Listen, Version: version}, w.tracker, w.checkers...)
	serveCtx, stopServer := context.WithCancel(ctx)
	defer stopServer()

	g, gctx := errgroup.WithContext(serveCtx)
	g.Go(func() error {
		return srv.Run(gctx)
	})

	var (
		report *jobs.Report
		runErr error
	)
	g.Go(func() error {
		defer stopServer()
		report, runErr = w.runner.Run(gctx, w.cfg.Plans, codes)
		return nil
	})

	if err := g.Wait(); err != nil {
		return report, errors.Join(runErr, err)
	}
	return report, runErr
}

func printReport(w io.Writer, r *jobs.Report) {
	source := "discovered"
	if r.CatalogFromCache {
		source = "cached"
	}
	if r.Identity.UID != "" {
		_, _ = fmt.Fprintf(w, "run %s as %s (%s)\n", r.RunID, r.Identity.Name, r.Identity.UID)
	}
	if r.Catalog != nil {
		rooms, floors, seats := r.Catalog.Counts()
		_, _ = fmt.Fprintf(w, "catalog %s: %d rooms, %d floors, %d seats\n", source, rooms, floors, seats)
	}
	for _, o := range r.Outcomes {
		line := fmt.Sprintf("plan %d %s: %s after %d attempt(s)", o.PlanIndex, o.Room, o.State, o.Attempts)
		if o.Err != nil {
			line += ": " + o.Err.Error()
		}
		_, _ = fmt.Fprintln(w, line)
	}
	if len(r.Outcomes) > 0 {
		_, _ = fmt.Fprintf(w, "%d/%d booked\n", r.Succeeded(), len(r.Outcomes))
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
