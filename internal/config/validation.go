// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/ManuGH/seatkeeper/internal/telemetry"
	"github.com/rs/zerolog"
)

// Validate checks a loaded configuration.
func Validate(cfg *Config) error {
	for _, f := range []struct{ field, raw string }{
		{"urls.login", cfg.URLs.Login},
		{"urls.query_rooms", cfg.URLs.QueryRooms},
		{"urls.query_seats", cfg.URLs.QuerySeats},
		{"urls.book_seat", cfg.URLs.BookSeat},
	} {
		if err := validateURL(f.raw); err != nil {
			return &ConfigurationError{Field: f.field, Reason: "invalid url", Err: err}
		}
	}

	for _, f := range []struct{ field, raw string }{
		{"session.timeout", cfg.Session.Timeout},
		{"pacing.room_interval", cfg.Pacing.RoomInterval},
		{"pacing.seat_interval", cfg.Pacing.SeatInterval},
		{"cache.ttl", cfg.Cache.TTL},
	} {
		if _, err := parseDuration(f.raw); err != nil {
			return &ConfigurationError{Field: f.field, Reason: "invalid duration", Err: err}
		}
	}

	if cfg.Job.MaxTrials != nil && *cfg.Job.MaxTrials < 1 {
		return &ConfigurationError{Field: "job.maxTrials", Reason: fmt.Sprintf("must be positive, got %d", *cfg.Job.MaxTrials)}
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level)); err != nil {
		return &ConfigurationError{Field: "log.level", Reason: "invalid level", Err: err}
	}

	switch strings.ToLower(cfg.Cache.Backend) {
	case "", "none", "memory":
	case "redis":
		if cfg.Cache.RedisAddr == "" {
			return &ConfigurationError{Field: "cache.redis_addr", Reason: "required for the redis backend"}
		}
	default:
		return &ConfigurationError{Field: "cache.backend", Reason: fmt.Sprintf("unknown backend %q", cfg.Cache.Backend)}
	}

	if cfg.Telemetry.Enabled {
		if !slices.Contains(telemetry.Exporters(), cfg.Telemetry.Exporter) {
			return &ConfigurationError{
				Field:  "telemetry.exporter",
				Reason: fmt.Sprintf("must be one of %s, got %q", strings.Join(telemetry.Exporters(), ", "), cfg.Telemetry.Exporter),
			}
		}
		if cfg.Telemetry.SamplingRate < 0 || cfg.Telemetry.SamplingRate > 1 {
			return &ConfigurationError{Field: "telemetry.sampling_rate", Reason: "must be within [0,1]"}
		}
	}

	for i, p := range cfg.Plans {
		if err := p.Validate(); err != nil {
			return &ConfigurationError{Field: fmt.Sprintf("plans[%d]", i), Reason: "invalid plan", Err: err}
		}
	}
	return nil
}

func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}

// parseDuration treats an empty string as zero.
func parseDuration(s string) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", s)
	}
	return d, nil
}
