// SPDX-License-Identifier: MIT

// Command seatkeeper reserves study-room seats according to the plans in its
// configuration file.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	xglog "github.com/ManuGH/seatkeeper/internal/log"
)

var (
	version   = "v0.3.0"
	commit    = "none"
	buildDate = "unknown"
)

const defaultConfigPath = "config.yaml"

func main() {
	// Logs go to stderr so command output on stdout stays parseable.
	xglog.Configure(xglog.Config{
		Level:   "info",
		Output:  os.Stderr,
		Service: "seatkeeper",
		Version: version,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := runCLI(ctx, os.Args[1:], os.Stdout)
	stop()
	os.Exit(code)
}

// runCLI dispatches a subcommand. Without arguments it performs a run.
func runCLI(ctx context.Context, args []string, stdout io.Writer) int {
	if len(args) == 0 {
		return runBookCLI(ctx, nil, stdout)
	}

	switch args[0] {
	case "-h", "--help", "help":
		printUsage(stdout)
		return 0
	case "run":
		return runBookCLI(ctx, args[1:], stdout)
	case "rooms":
		return runRoomsCLI(ctx, args[1:], stdout)
	case "plan":
		return runPlanCLI(ctx, args[1:], stdout)
	case "history":
		return runHistoryCLI(ctx, args[1:], stdout)
	case "config":
		return runConfigCLI(args[1:], stdout)
	case "version", "--version":
		_, _ = fmt.Fprintf(stdout, "%s (commit: %s, built: %s)\n", version, commit, buildDate)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		printUsage(os.Stderr)
		return 2
	}
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  seatkeeper [run] [--config config.yaml] [--plan CODE,...]")
	_, _ = fmt.Fprintln(w, "  seatkeeper rooms [--config config.yaml] [--format text|json|floors]")
	_, _ = fmt.Fprintln(w, "  seatkeeper plan add --room NAME --floor NAME|ID --seats ID,... --begin TIME --duration HOURS [--bookers ID,...]")
	_, _ = fmt.Fprintln(w, "  seatkeeper plan list [--config config.yaml]")
	_, _ = fmt.Fprintln(w, "  seatkeeper history [--config config.yaml] [--run ID] [--limit N] [--verify quick|full]")
	_, _ = fmt.Fprintln(w, "  seatkeeper config init [--config config.yaml] [--force]")
	_, _ = fmt.Fprintln(w, "  seatkeeper config validate [--config config.yaml]")
	_, _ = fmt.Fprintln(w, "  seatkeeper version")
}
