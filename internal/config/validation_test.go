// SPDX-License-Identifier: MIT

package config

import (
	"testing"

	"github.com/ManuGH/seatkeeper/internal/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := Default()
	applyDefaults(cfg)
	cfg.UserInfo = UserInfo{LoginName: "u", Password: "p"}
	return cfg
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(validConfig()))

	cases := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty url", func(c *Config) { c.URLs.BookSeat = "" }, "urls.book_seat"},
		{"relative url", func(c *Config) { c.URLs.Login = "/api.php/login" }, "urls.login"},
		{"ftp url", func(c *Config) { c.URLs.QueryRooms = "ftp://seat.example.edu/x" }, "urls.query_rooms"},
		{"bad timeout", func(c *Config) { c.Session.Timeout = "soon" }, "session.timeout"},
		{"negative interval", func(c *Config) { c.Pacing.SeatInterval = "-1s" }, "pacing.seat_interval"},
		{"zero trials", func(c *Config) { n := 0; c.Job.MaxTrials = &n }, "job.maxTrials"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"unknown cache", func(c *Config) { c.Cache.Backend = "memcached" }, "cache.backend"},
		{"redis without addr", func(c *Config) { c.Cache.Backend = "redis" }, "cache.redis_addr"},
		{"bad exporter", func(c *Config) { c.Telemetry.Enabled = true; c.Telemetry.Exporter = "zipkin" }, "telemetry.exporter"},
		{"bad sampling", func(c *Config) { c.Telemetry.Enabled = true; c.Telemetry.SamplingRate = 2 }, "telemetry.sampling_rate"},
		{"bad plan", func(c *Config) { c.Plans = []plan.Plan{{RoomName: "x", Duration: 1}} }, "plans[0]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration)
			var ce *ConfigurationError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tc.field, ce.Field)
		})
	}
}

func TestJobParams_Defaults(t *testing.T) {
	cfg := &Config{}
	p := cfg.JobParams()
	assert.Equal(t, 10, p.MaxTrials)
	assert.Equal(t, 2.0, p.Delay.Seconds())

	one := 1
	cfg.Job.Delay = &one
	assert.Equal(t, 2.0, cfg.JobParams().Delay.Seconds())
}

func TestTelemetryConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Telemetry = TelemetryConfig{Enabled: true, Exporter: "http", SamplingRate: 0.5, Environment: "campus"}

	tc := cfg.TelemetryConfig("v1.2.3")
	assert.Equal(t, "seatkeeper", tc.ServiceName)
	assert.Equal(t, "v1.2.3", tc.ServiceVersion)
	assert.Equal(t, "campus", tc.Environment)
	assert.Equal(t, "seat.example.edu", tc.UpstreamHost)
	assert.Equal(t, 0.5, tc.SamplingRate)
}
