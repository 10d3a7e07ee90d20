// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/ManuGH/seatkeeper/internal/log"
)

// Environment fallback variables.
const (
	EnvUserID    = "HLMUSERID"
	EnvPassword  = "HLMPASSWORD"
	EnvPlanCode  = "HLMPLANCODE"
	EnvMaxTrials = "HLMMAXTRIALS"
	EnvDelay     = "HLMDELAY"
	EnvLogLevel  = "LOG_LEVEL"
)

// lookupEnv returns the value of key when it is set and not blank. Every
// lookup is logged at debug level with its source; credential values are
// never logged.
func lookupEnv(key string) (string, bool) {
	logger := log.WithComponent("config")
	ev := logger.Debug().Str("key", key)
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		ev.Str("source", "default").Msg("environment variable not set")
		return "", false
	}
	if isSensitive(key) {
		ev = ev.Bool("sensitive", true)
	} else {
		ev = ev.Str("value", v)
	}
	ev.Str("source", "environment").Msg("using environment variable")
	return v, true
}

func isSensitive(key string) bool {
	k := strings.ToUpper(key)
	return k == EnvPassword || strings.Contains(k, "PASSWORD") || strings.Contains(k, "SECRET")
}

// ParseString returns the environment value of key, or defaultValue.
func ParseString(key, defaultValue string) string {
	if v, ok := lookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// ParseInt returns the integer value of key. Unset or malformed values
// yield defaultValue.
func ParseInt(key string, defaultValue int) int {
	v, ok := lookupEnv(key)
	if !ok {
		return defaultValue
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		logger := log.WithComponent("config")
		logger.Warn().
			Str("key", key).
			Int("default", defaultValue).
			Msg("invalid integer in environment variable, using default")
		return defaultValue
	}
	return i
}

// ParseCSV reads a comma separated list; blank items are dropped.
func ParseCSV(key string, defaultValue []string) []string {
	raw := ParseString(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
