// SPDX-License-Identifier: MIT

package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure_ServiceAndComponent(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "svc-test", Version: "v0.0.1"})
	t.Cleanup(func() { Configure(Config{}) })

	l := WithComponent("catalog")
	l.Info().Str(FieldRoom, "A101").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "svc-test", entry["service"])
	assert.Equal(t, "v0.0.1", entry["version"])
	assert.Equal(t, "catalog", entry[FieldComponent])
	assert.Equal(t, "A101", entry[FieldRoom])
	assert.Equal(t, "hello", entry["message"])
}

func TestConfigure_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "chatty", Output: &buf})
	t.Cleanup(func() { Configure(Config{}) })

	l := WithComponent("config")
	l.Debug().Msg("hidden")
	assert.Zero(t, buf.Len())

	l.Info().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestConfigure_ReplacesOutput(t *testing.T) {
	var first, second bytes.Buffer
	Configure(Config{Output: &first})
	t.Cleanup(func() { Configure(Config{}) })
	l := WithComponent("cli")

	Configure(Config{Output: &second})
	after := WithComponent("cli")
	after.Info().Msg("after")
	l.Info().Msg("before")

	assert.Contains(t, first.String(), "before", "existing loggers keep their writer")
	assert.NotContains(t, first.String(), "after")
	assert.Contains(t, second.String(), "after")
}
