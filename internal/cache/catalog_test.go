// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/ManuGH/seatkeeper/internal/catalog"
	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(target time.Time) *catalog.Catalog {
	return &catalog.Catalog{
		Target: target,
		Rooms: []*catalog.Room{{
			Name:          "Room 3",
			SpaceCategory: catalog.SpaceCategory{CategoryID: "592", ContentID: "4"},
			Floors: []*catalog.Floor{{
				Name:  "3F",
				ID:    "21",
				Seats: []catalog.Seat{catalog.NewSeat("301", map[string]any{"title": "A-01"})},
			}},
		}},
	}
}

func TestCatalogKey_HourBuckets(t *testing.T) {
	a := time.Date(2026, 5, 1, 11, 0, 0, 0, time.UTC)
	b := time.Date(2026, 5, 1, 11, 59, 59, 0, time.UTC)
	c := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "catalog:2026050111", CatalogKey(a))
	assert.Equal(t, CatalogKey(a), CatalogKey(b))
	assert.NotEqual(t, CatalogKey(a), CatalogKey(c))
}

func TestCatalogStore_Memory(t *testing.T) {
	ctx := context.Background()
	target := time.Date(2026, 5, 2, 11, 0, 0, 0, time.UTC)
	store := NewCatalogStore(NewMemoryCache(0), time.Minute)

	_, ok := store.Load(ctx, target)
	assert.False(t, ok)

	require.NoError(t, store.Store(ctx, testCatalog(target)))

	got, ok := store.Load(ctx, target.Add(10*time.Minute))
	require.True(t, ok)
	assert.Equal(t, []string{"Room 3"}, got.RoomNames())
	seat, ok := got.Seat("Room 3", "3F", "301")
	require.True(t, ok)
	assert.Equal(t, "A-01", seat.Label())
}

func TestCatalogStore_Redis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rc, err := NewRedisCache(ctx, RedisConfig{Addr: mr.Addr()}, zerolog.Nop())
	require.NoError(t, err)
	defer rc.Close()

	target := time.Date(2026, 5, 2, 11, 0, 0, 0, time.UTC)
	store := NewCatalogStore(rc, 0)
	require.NoError(t, store.Store(ctx, testCatalog(target)))
	assert.Equal(t, DefaultTTL, mr.TTL("seatkeeper:"+CatalogKey(target)))

	got, ok := store.Load(ctx, target)
	require.True(t, ok)
	assert.Equal(t, "592", got.Rooms[0].SpaceCategory.CategoryID)

	mr.FastForward(DefaultTTL + time.Second)
	_, ok = store.Load(ctx, target)
	assert.False(t, ok)
}

func TestCatalogStore_DropsCorruptEntry(t *testing.T) {
	ctx := context.Background()
	target := time.Date(2026, 5, 2, 11, 0, 0, 0, time.UTC)
	mem := NewMemoryCache(0)
	mem.Set(ctx, CatalogKey(target), []byte("{not json"), time.Minute)

	store := NewCatalogStore(mem, time.Minute)
	_, ok := store.Load(ctx, target)
	assert.False(t, ok)
	assert.Equal(t, 0, mem.Stats().CurrentSize)
}
