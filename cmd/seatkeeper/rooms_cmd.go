// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ManuGH/seatkeeper/internal/catalog"
	xglog "github.com/ManuGH/seatkeeper/internal/log"
)

func runRoomsCLI(ctx context.Context, args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("seatkeeper rooms", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var configPath, format string
	fs.StringVar(&configPath, "config", defaultConfigPath, "path to YAML configuration file")
	fs.StringVar(&format, "format", "text", "output format: text, json or floors")

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if format != "text" && format != "json" && format != "floors" {
		fmt.Fprintf(os.Stderr, "Error: unsupported format %q\n", format)
		return exitUsage
	}

	logger := xglog.WithComponent("cli")
	cat, err := discoverCatalog(ctx, configPath)
	if err != nil {
		logger.Error().Err(err).Msg("catalog unavailable")
		return exitError
	}

	switch format {
	case "json", "floors":
		var v any = cat
		if format == "floors" {
			v = cat.RoomDetails()
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			logger.Error().Err(err).Msg("encode catalog")
			return exitError
		}
	default:
		printCatalog(stdout, cat)
	}
	return exitOK
}

// discoverCatalog logs in and returns the catalog for the current target
// hour, from the cache when configured.
func discoverCatalog(ctx context.Context, configPath string) (*catalog.Catalog, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	w, err := newWorkflow(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = w.close() }()

	_, cat, _, err := w.runner.Prepare(ctx)
	return cat, err
}

func printCatalog(w io.Writer, cat *catalog.Catalog) {
	_, _ = fmt.Fprintf(w, "target %s\n", cat.Target.Format("2006-01-02 15:04"))
	for _, room := range cat.Rooms {
		_, _ = fmt.Fprintf(w, "%s (category %s, content %s)\n", room.Name, room.SpaceCategory.CategoryID, room.SpaceCategory.ContentID)
		for _, floor := range room.Floors {
			ids := make([]string, 0, len(floor.Seats))
			for _, s := range floor.Seats {
				ids = append(ids, s.ID)
			}
			_, _ = fmt.Fprintf(w, "  %s [%s]: %s\n", floor.Name, floor.ID, strings.Join(ids, " "))
		}
	}
}
