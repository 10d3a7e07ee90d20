// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)

	c.Set(ctx, "key1", []byte("value1"), 5*time.Minute)

	val, ok := c.Get(ctx, "key1")
	require.True(t, ok)
	assert.Equal(t, "value1", string(val))

	_, ok = c.Get(ctx, "nonexistent")
	assert.False(t, ok)
}

func TestMemoryCache_ValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)

	in := []byte("abc")
	c.Set(ctx, "k", in, time.Minute)
	in[0] = 'x'

	out, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "abc", string(out))
	out[0] = 'y'

	again, _ := c.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestMemoryCache_Expiration(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set(ctx, "short", []byte("v"), time.Minute)
	_, ok := c.Get(ctx, "short")
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get(ctx, "short")
	assert.False(t, ok)

	assert.Equal(t, 1, c.deleteExpired())
	assert.Equal(t, 0, c.Stats().CurrentSize)
}

func TestMemoryCache_Stats(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)

	c.Set(ctx, "key1", []byte("v1"), time.Minute)
	c.Set(ctx, "key2", []byte("v2"), time.Minute)
	c.Get(ctx, "key1")
	c.Get(ctx, "key1")
	c.Get(ctx, "nonexistent")
	c.Delete(ctx, "key2")

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(2), stats.Sets)
	assert.Equal(t, 1, stats.CurrentSize)
}

func TestMemoryCache_JanitorStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	c := NewMemoryCache(10 * time.Millisecond)
	c.Set(ctx, "gone", []byte("v"), time.Millisecond)

	require.Eventually(t, func() bool {
		return c.Stats().Evictions == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}

func TestNoOpCache(t *testing.T) {
	ctx := context.Background()
	var c Cache = NoOpCache{}
	c.Set(ctx, "k", []byte("v"), time.Minute)
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, "none", c.Backend())
}

func TestNew_Backends(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()

	c, err := New(ctx, Config{}, logger)
	require.NoError(t, err)
	assert.Equal(t, "none", c.Backend())

	c, err = New(ctx, Config{Backend: "Memory"}, logger)
	require.NoError(t, err)
	assert.Equal(t, "memory", c.Backend())
	require.NoError(t, c.(*MemoryCache).Close())

	_, err = New(ctx, Config{Backend: "redis"}, logger)
	assert.Error(t, err)

	_, err = New(ctx, Config{Backend: "memcached"}, logger)
	assert.ErrorContains(t, err, "unknown backend")
}
