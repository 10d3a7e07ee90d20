// SPDX-License-Identifier: MIT

package config

import "github.com/ManuGH/seatkeeper/internal/plan"

// Config is the YAML configuration file. Durations are Go duration strings
// ("1.5s"); job.delay is whole seconds.
type Config struct {
	Session  SessionConfig  `yaml:"session"`
	URLs     URLs           `yaml:"urls"`
	PlanCode []string       `yaml:"planCode"`
	Data     map[string]any `yaml:"data"`
	Settings map[string]any `yaml:"settings"`
	UserInfo UserInfo       `yaml:"user_info"`
	Plans    []plan.Plan    `yaml:"plans"`
	Job      JobConfig      `yaml:"job"`

	Pacing    PacingConfig    `yaml:"pacing,omitempty"`
	Log       LogConfig       `yaml:"log,omitempty"`
	Cache     CacheConfig     `yaml:"cache,omitempty"`
	History   HistoryConfig   `yaml:"history,omitempty"`
	Telemetry TelemetryConfig `yaml:"telemetry,omitempty"`
	Status    StatusConfig    `yaml:"status,omitempty"`
}

// SessionConfig configures the HTTP session.
type SessionConfig struct {
	Headers   map[string]string `yaml:"headers"`
	Verify    *bool             `yaml:"verify"`
	TrustEnv  *bool             `yaml:"trust_env"`
	Params    map[string]string `yaml:"params"`
	Timeout   string            `yaml:"timeout,omitempty"`
	UserAgent string            `yaml:"user_agent,omitempty"`
}

// URLs are the service endpoints.
type URLs struct {
	Login      string `yaml:"login"`
	QueryRooms string `yaml:"query_rooms"`
	QuerySeats string `yaml:"query_seats"`
	BookSeat   string `yaml:"book_seat"`
}

// UserInfo holds the login credentials.
type UserInfo struct {
	LoginName string `yaml:"login_name"`
	Password  string `yaml:"password"`
}

// JobConfig bounds the booking retry loop. Nil means unset.
type JobConfig struct {
	MaxTrials *int `yaml:"maxTrials"`
	Delay     *int `yaml:"delay"`
}

// PacingConfig sets the discovery request intervals.
type PacingConfig struct {
	RoomInterval string `yaml:"room_interval,omitempty"`
	SeatInterval string `yaml:"seat_interval,omitempty"`
}

type LogConfig struct {
	Level string `yaml:"level,omitempty"`
}

// CacheConfig selects the catalog cache backend.
type CacheConfig struct {
	Backend       string `yaml:"backend,omitempty"` // memory, redis or none
	RedisAddr     string `yaml:"redis_addr,omitempty"`
	RedisPassword string `yaml:"redis_password,omitempty"`
	RedisDB       int    `yaml:"redis_db,omitempty"`
	TTL           string `yaml:"ttl,omitempty"`
}

// HistoryConfig locates the attempt ledger; an empty path disables it.
type HistoryConfig struct {
	Path string `yaml:"path,omitempty"`
}

type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled,omitempty"`
	Exporter     string  `yaml:"exporter,omitempty"` // grpc or http
	Endpoint     string  `yaml:"endpoint,omitempty"`
	SamplingRate float64 `yaml:"sampling_rate,omitempty"`
	Environment  string  `yaml:"environment,omitempty"`
}

// StatusConfig enables the status server when Listen is set.
type StatusConfig struct {
	Listen string `yaml:"listen,omitempty"`
}
