// SPDX-License-Identifier: MIT

package config

import (
	"net/url"
	"time"

	"github.com/ManuGH/seatkeeper/internal/cache"
	"github.com/ManuGH/seatkeeper/internal/catalog"
	"github.com/ManuGH/seatkeeper/internal/jobs"
	"github.com/ManuGH/seatkeeper/internal/session"
	"github.com/ManuGH/seatkeeper/internal/telemetry"
)

// The accessors below assume a config that passed Validate.

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func mustDuration(s string) time.Duration {
	d, _ := parseDuration(s)
	return d
}

// SessionOptions maps the session section.
func (c *Config) SessionOptions() session.Options {
	return session.Options{
		Headers:   c.Session.Headers,
		Params:    c.Session.Params,
		Verify:    boolOr(c.Session.Verify, true),
		TrustEnv:  boolOr(c.Session.TrustEnv, true),
		Timeout:   mustDuration(c.Session.Timeout),
		UserAgent: c.Session.UserAgent,
		Trace:     c.Telemetry.Enabled,
	}
}

func (c *Config) Credentials() session.Credentials {
	return session.Credentials{LoginName: c.UserInfo.LoginName, Password: c.UserInfo.Password}
}

func (c *Config) CatalogEndpoints() catalog.Endpoints {
	return catalog.Endpoints{QueryRooms: c.URLs.QueryRooms, QuerySeats: c.URLs.QuerySeats}
}

// JobParams returns normalized retry parameters.
func (c *Config) JobParams() jobs.Params {
	p := jobDefaults
	if c.Job.MaxTrials != nil {
		p.MaxTrials = *c.Job.MaxTrials
	}
	if c.Job.Delay != nil {
		p.Delay = time.Duration(*c.Job.Delay) * time.Second
	}
	return p.Normalize()
}

// PacingIntervals returns the room and seat discovery intervals.
func (c *Config) PacingIntervals() (room, seat time.Duration) {
	return mustDuration(c.Pacing.RoomInterval), mustDuration(c.Pacing.SeatInterval)
}

func (c *Config) CacheConfig() cache.Config {
	return cache.Config{
		Backend:       c.Cache.Backend,
		RedisAddr:     c.Cache.RedisAddr,
		RedisPassword: c.Cache.RedisPassword,
		RedisDB:       c.Cache.RedisDB,
		TTL:           mustDuration(c.Cache.TTL),
	}
}

func (c *Config) TelemetryConfig(version string) telemetry.Config {
	var host string
	if u, err := url.Parse(c.URLs.Login); err == nil {
		host = u.Host
	}
	return telemetry.Config{
		Enabled:        c.Telemetry.Enabled,
		Exporter:       c.Telemetry.Exporter,
		Endpoint:       c.Telemetry.Endpoint,
		SamplingRate:   c.Telemetry.SamplingRate,
		ServiceName:    "seatkeeper",
		ServiceVersion: version,
		Environment:    c.Telemetry.Environment,
		UpstreamHost:   host,
	}
}
