// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ManuGH/seatkeeper/internal/config"
	xglog "github.com/ManuGH/seatkeeper/internal/log"
	"github.com/ManuGH/seatkeeper/internal/plan"
)

// beginLayouts are accepted by plan add --begin, in local time unless the
// value carries an offset.
var beginLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04"}

func runPlanCLI(ctx context.Context, args []string, stdout io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printPlanUsage(stdout)
		return exitOK
	}

	switch args[0] {
	case "add":
		return runPlanAdd(ctx, args[1:], stdout)
	case "list":
		return runPlanList(args[1:], stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown subcommand: %s\n\n", args[0])
		printPlanUsage(os.Stderr)
		return exitUsage
	}
}

func printPlanUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  seatkeeper plan add --room NAME --floor NAME|ID --seats ID,... [--begin TIME] [--duration HOURS] [--bookers ID,...]")
	_, _ = fmt.Fprintln(w, "  seatkeeper plan list [--config config.yaml]")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "Without --begin the plan starts at the next booking window.")
	_, _ = fmt.Fprintln(w, "Without --bookers every seat is booked for the logged-in user.")
}

func runPlanAdd(ctx context.Context, args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("seatkeeper plan add", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var configPath, room, floor, seatList, bookerList, beginRaw string
	var hours int
	fs.StringVar(&configPath, "config", defaultConfigPath, "path to YAML configuration file")
	fs.StringVar(&room, "room", "", "room name")
	fs.StringVar(&floor, "floor", "", "floor name or id")
	fs.StringVar(&seatList, "seats", "", "comma-separated seat ids")
	fs.StringVar(&bookerList, "bookers", "", "comma-separated occupant ids, one per seat")
	fs.StringVar(&beginRaw, "begin", "", "start time, e.g. 2026-04-02 11:00")
	fs.IntVar(&hours, "duration", 1, "duration in hours")

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if room == "" || floor == "" || seatList == "" {
		fmt.Fprintln(os.Stderr, "Error: --room, --floor and --seats are required")
		return exitUsage
	}

	logger := xglog.WithComponent("cli")
	cfg, err := loadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load configuration")
		return exitError
	}
	w, err := newWorkflow(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialise")
		return exitError
	}
	defer func() { _ = w.close() }()

	id, cat, _, err := w.runner.Prepare(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("catalog unavailable")
		return exitError
	}

	begin := defaultBegin(w.resolver.Target())
	if beginRaw != "" {
		if begin, err = parseBegin(beginRaw); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitUsage
		}
	}

	builder := plan.NewBuilder(cat, clock)
	ids := splitList(seatList)
	seats, err := builder.Seats(room, floor, ids)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}
	bookers := splitList(bookerList)
	if len(bookers) == 0 {
		for range seats {
			bookers = append(bookers, id.UID)
		}
	}

	// Start from the file as written so environment values are not persisted.
	raw, err := config.ReadFile(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("failed to read configuration")
		return exitError
	}
	plans, err := builder.Add(raw.Plans, room, begin, hours, seats, bookers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}
	raw.Plans = plans
	if err := config.NewManager(configPath).Save(raw); err != nil {
		logger.Error().Err(err).Msg("failed to save configuration")
		return exitError
	}

	idx := len(plans) - 1
	_, _ = fmt.Fprintf(stdout, "added plan %d: ", idx)
	printPlan(stdout, plans[idx])
	return exitOK
}

// defaultBegin is the first full hour of the booking window that is still
// in the future.
func defaultBegin(target time.Time) time.Time {
	t := target.Truncate(time.Hour)
	if !t.After(clock.Now()) {
		t = t.Add(time.Hour)
	}
	return t
}

func parseBegin(raw string) (time.Time, error) {
	for _, layout := range beginLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid --begin %q, want YYYY-MM-DD HH:MM", raw)
}

func runPlanList(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("seatkeeper plan list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var configPath string
	fs.StringVar(&configPath, "config", defaultConfigPath, "path to YAML configuration file")

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	cfg, err := config.ReadFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error in %s:\n  %v\n", configPath, err)
		return exitError
	}
	if len(cfg.Plans) == 0 {
		_, _ = fmt.Fprintln(stdout, "no plans")
		return exitOK
	}

	selected := make(map[int]bool)
	if picked, err := plan.Select(cfg.Plans, cfg.PlanCode); err == nil {
		for _, p := range picked {
			selected[p.Index] = true
		}
	}
	for i, p := range cfg.Plans {
		mark := " "
		if selected[i] {
			mark = "*"
		}
		_, _ = fmt.Fprintf(stdout, "%s %d: ", mark, i)
		printPlan(stdout, p)
	}
	return exitOK
}

func printPlan(w io.Writer, p plan.Plan) {
	ids := make([]string, 0, len(p.SeatsInfo))
	for _, s := range p.SeatsInfo {
		ids = append(ids, s.ID)
	}
	_, _ = fmt.Fprintf(w, "%s %s %dh seats=%s bookers=%s\n",
		p.RoomName, p.BeginTime.Format("2006-01-02 15:04"), p.Duration,
		strings.Join(ids, ","), strings.Join(p.SeatBookers, ","))
}
