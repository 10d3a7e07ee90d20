// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/ManuGH/seatkeeper/internal/config"
	"github.com/ManuGH/seatkeeper/internal/history"
)

func runHistoryCLI(ctx context.Context, args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("seatkeeper history", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var configPath, path, runID, verify string
	var limit int
	fs.StringVar(&configPath, "config", defaultConfigPath, "path to YAML configuration file")
	fs.StringVar(&path, "path", "", "ledger database, overrides history.path")
	fs.StringVar(&runID, "run", "", "only attempts of this run id")
	fs.IntVar(&limit, "limit", 50, "most recent attempts to show, 0 for all")
	fs.StringVar(&verify, "verify", "", "check ledger integrity: quick or full")

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if verify != "" && verify != "quick" && verify != "full" {
		fmt.Fprintf(os.Stderr, "Error: invalid --verify %q (must be quick or full)\n", verify)
		return exitUsage
	}

	if path == "" {
		cfg, err := config.ReadFile(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Configuration error in %s:\n  %v\n", configPath, err)
			return exitError
		}
		path = cfg.History.Path
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "Error: history.path is not configured")
		return exitUsage
	}
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}

	ledger, err := history.Open(path, history.DefaultConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}
	defer func() { _ = ledger.Close() }()

	if verify != "" {
		issues, err := ledger.Verify(verify == "full")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitError
		}
		if len(issues) > 0 {
			for _, issue := range issues {
				_, _ = fmt.Fprintf(stdout, "FAIL %s\n", issue)
			}
			return exitError
		}
		_, _ = fmt.Fprintf(stdout, "OK %s (%s)\n", path, verify)
		return exitOK
	}

	attempts, err := ledger.List(ctx, history.Filter{RunID: runID, Limit: limit})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}
	if len(attempts) == 0 {
		_, _ = fmt.Fprintln(stdout, "no attempts recorded")
		return exitOK
	}

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "TIME\tRUN\tPLAN\tROOM\tATTEMPT\tOUTCOME\tCODE\tDETAIL")
	for _, a := range attempts {
		detail := a.Message
		if a.Error != "" {
			detail = a.Error
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%d\t%s\t%s\t%s\n",
			a.At.Local().Format(time.DateTime), shortID(a.RunID), a.PlanIndex, a.Room, a.Number, a.Outcome, a.Code, detail)
	}
	_ = tw.Flush()
	return exitOK
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
