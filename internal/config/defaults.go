// SPDX-License-Identifier: MIT

package config

import (
	"github.com/ManuGH/seatkeeper/internal/jobs"
	"github.com/ManuGH/seatkeeper/internal/plan"
	"github.com/ManuGH/seatkeeper/internal/ratelimit"
)

// DefaultBaseURL is the service written into a freshly created config file.
const DefaultBaseURL = "https://seat.example.edu"

// Default returns the configuration written when no file exists.
// Credentials are left empty so the environment fallback applies.
func Default() *Config {
	verify := true
	trustEnv := true
	return &Config{
		Session: SessionConfig{
			Headers: map[string]string{
				"X-Requested-With": "XMLHttpRequest",
				"Referer":          DefaultBaseURL + "/",
			},
			Verify:   &verify,
			TrustEnv: &trustEnv,
			Params:   map[string]string{},
			Timeout:  "15s",
		},
		URLs: URLs{
			Login:      DefaultBaseURL + "/api.php/login",
			QueryRooms: DefaultBaseURL + "/api.php/v3areas",
			QuerySeats: DefaultBaseURL + "/api.php/spaces_old",
			BookSeat:   DefaultBaseURL + "/api.php/spaces/book",
		},
		PlanCode: []string{},
		Data:     map[string]any{},
		Settings: map[string]any{},
		Plans:    []plan.Plan{},
		Pacing: PacingConfig{
			RoomInterval: ratelimit.DefaultRoomInterval.String(),
			SeatInterval: ratelimit.DefaultSeatInterval.String(),
		},
		Log:   LogConfig{Level: "info"},
		Cache: CacheConfig{Backend: "none", TTL: "30m"},
	}
}

// applyDefaults fills settings the file left empty. Job parameters are not
// defaulted here; their absence triggers the environment fallback.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Session.Verify == nil {
		cfg.Session.Verify = def.Session.Verify
	}
	if cfg.Session.TrustEnv == nil {
		cfg.Session.TrustEnv = def.Session.TrustEnv
	}
	if cfg.Session.Timeout == "" {
		cfg.Session.Timeout = def.Session.Timeout
	}
	if cfg.Pacing.RoomInterval == "" {
		cfg.Pacing.RoomInterval = def.Pacing.RoomInterval
	}
	if cfg.Pacing.SeatInterval == "" {
		cfg.Pacing.SeatInterval = def.Pacing.SeatInterval
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = def.Cache.Backend
	}
	if cfg.Cache.TTL == "" {
		cfg.Cache.TTL = def.Cache.TTL
	}
	if cfg.Telemetry.Exporter == "" {
		cfg.Telemetry.Exporter = "grpc"
	}
	if cfg.Telemetry.SamplingRate == 0 {
		cfg.Telemetry.SamplingRate = 1
	}
}

// jobDefaults are the values used when neither file nor environment set them.
var jobDefaults = jobs.Params{MaxTrials: jobs.DefaultMaxTrials, Delay: jobs.MinDelay}
