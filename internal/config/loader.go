// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ManuGH/seatkeeper/internal/jobs"
	"github.com/ManuGH/seatkeeper/internal/log"
	"gopkg.in/yaml.v3"
)

// Loader reads the configuration file and applies the environment fallback.
type Loader struct {
	configPath string
	// Created reports whether Load wrote a default file.
	Created bool
}

// NewLoader creates a loader for configPath.
func NewLoader(configPath string) *Loader {
	return &Loader{configPath: configPath}
}

// Load creates a default file when none exists, parses it strictly, fills
// defaults and falls back to the environment for missing credentials or job
// parameters. Every failure wraps ErrConfiguration.
func (l *Loader) Load() (*Config, error) {
	logger := log.WithComponent("config")

	if ext := strings.ToLower(filepath.Ext(l.configPath)); ext != ".yaml" && ext != ".yml" {
		return nil, &ConfigurationError{Field: "file", Reason: fmt.Sprintf("unsupported config format %q (only YAML supported)", ext)}
	}
	if _, err := os.Stat(l.configPath); errors.Is(err, fs.ErrNotExist) {
		if err := NewManager(l.configPath).Save(Default()); err != nil {
			return nil, &ConfigurationError{Field: "file", Reason: "create default config", Err: err}
		}
		l.Created = true
		logger.Info().Str("path", l.configPath).Msg("created default config file")
	}

	cfg, err := l.loadFile(l.configPath)
	if err != nil {
		return nil, err
	}
	applyDefaults(cfg)

	if cfg.UserInfo.LoginName == "" || cfg.Job.MaxTrials == nil {
		if err := applyEnv(cfg); err != nil {
			return nil, err
		}
	}
	if lvl := ParseString(EnvLogLevel, ""); lvl != "" {
		cfg.Log.Level = lvl
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadFile parses the file as written, without defaults or environment
// fallback. Callers that rewrite the file start from it so that values from
// the environment are never persisted.
func ReadFile(path string) (*Config, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".yaml" && ext != ".yml" {
		return nil, &ConfigurationError{Field: "file", Reason: fmt.Sprintf("unsupported config format %q (only YAML supported)", ext)}
	}
	return (&Loader{configPath: path}).loadFile(path)
}

// loadFile parses path with STRICT parsing: unknown keys are an error.
func (l *Loader) loadFile(path string) (*Config, error) {
	path = filepath.Clean(path)

	// #nosec G304 -- configuration file paths are provided by the operator via CLI
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Field: "file", Reason: "read", Err: err}
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &cfg, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, &ConfigurationError{Field: "file", Reason: "strict parse", Err: errors.Join(ErrUnknownConfigField, err)}
		}
		return nil, &ConfigurationError{Field: "file", Reason: "strict parse", Err: err}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, &ConfigurationError{Field: "file", Reason: "config file contains multiple documents or trailing content"}
	}
	return &cfg, nil
}

// applyEnv fills credentials, plan codes and job parameters from the
// environment. Credentials must end up set, from the file or the environment.
func applyEnv(cfg *Config) error {
	user := ParseString(EnvUserID, "")
	pass := ParseString(EnvPassword, "")
	if user != "" && pass != "" {
		cfg.UserInfo.LoginName = user
		cfg.UserInfo.Password = pass
		cfg.PlanCode = ParseCSV(EnvPlanCode, cfg.PlanCode)
	}
	if cfg.UserInfo.LoginName == "" || cfg.UserInfo.Password == "" {
		return &ConfigurationError{
			Field:  "user_info",
			Reason: fmt.Sprintf("no credentials in config file and %s/%s not set", EnvUserID, EnvPassword),
		}
	}

	if cfg.Job.MaxTrials == nil {
		trials := ParseInt(EnvMaxTrials, jobDefaults.MaxTrials)
		delay := ParseInt(EnvDelay, int(jobDefaults.Delay.Seconds()))
		cfg.Job.MaxTrials = &trials
		cfg.Job.Delay = &delay
	}
	if floor := int(jobs.MinDelay.Seconds()); cfg.Job.Delay == nil || *cfg.Job.Delay < floor {
		cfg.Job.Delay = &floor
	}
	return nil
}
