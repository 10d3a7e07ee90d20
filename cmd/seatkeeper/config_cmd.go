// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/ManuGH/seatkeeper/internal/config"
)

func runConfigCLI(args []string, stdout io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printConfigUsage(stdout)
		return exitOK
	}

	switch args[0] {
	case "init":
		return runConfigInit(args[1:], stdout)
	case "validate":
		return runConfigValidate(args[1:], stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown subcommand: %s\n\n", args[0])
		printConfigUsage(os.Stderr)
		return exitUsage
	}
}

func printConfigUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  seatkeeper config init [--config config.yaml] [--force]")
	_, _ = fmt.Fprintln(w, "  seatkeeper config validate [--config config.yaml]")
}

func runConfigInit(args []string, stdout io.Writer) int {
	flags := flag.NewFlagSet("seatkeeper config init", flag.ContinueOnError)
	flags.SetOutput(os.Stderr)

	var configPath string
	var force bool
	flags.StringVar(&configPath, "config", defaultConfigPath, "path to YAML configuration file")
	flags.BoolVar(&force, "force", false, "overwrite an existing file")

	if err := flags.Parse(args); err != nil {
		return exitUsage
	}

	if _, err := os.Stat(configPath); err == nil && !force {
		fmt.Fprintf(os.Stderr, "Error: %s exists (use --force to overwrite)\n", configPath)
		return exitError
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}

	if err := config.NewManager(configPath).Save(config.Default()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}
	_, _ = fmt.Fprintf(stdout, "wrote %s\n", configPath)
	return exitOK
}

func runConfigValidate(args []string, stdout io.Writer) int {
	flags := flag.NewFlagSet("seatkeeper config validate", flag.ContinueOnError)
	flags.SetOutput(os.Stderr)

	var configPath string
	flags.StringVar(&configPath, "config", defaultConfigPath, "path to YAML configuration file")

	if err := flags.Parse(args); err != nil {
		return exitUsage
	}
	if _, err := os.Stat(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}

	if _, err := config.NewLoader(configPath).Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error in %s:\n  %v\n", configPath, err)
		return exitError
	}
	_, _ = fmt.Fprintf(stdout, "%s is valid\n", configPath)
	return exitOK
}
