// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ManuGH/seatkeeper/internal/catalog"
	"github.com/ManuGH/seatkeeper/internal/metrics"
	"github.com/rs/zerolog"
)

// DefaultTTL bounds how long a discovered catalog is reused.
const DefaultTTL = 30 * time.Minute

// Config selects and tunes the cache backend.
type Config struct {
	Backend       string // memory, redis or none
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

// New builds the configured backend. An empty backend disables caching.
func New(ctx context.Context, cfg Config, logger zerolog.Logger) (Cache, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "none":
		return NoOpCache{}, nil
	case "memory":
		return NewMemoryCache(time.Minute), nil
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("cache: redis backend requires an address")
		}
		return NewRedisCache(ctx, RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger)
	default:
		return nil, fmt.Errorf("cache: unknown backend %q", cfg.Backend)
	}
}

// CatalogKey is the cache key of a catalog resolved for target. Catalogs are
// bucketed by the hour they were resolved for.
func CatalogKey(target time.Time) string {
	return "catalog:" + target.UTC().Format("2006010215")
}

// CatalogStore stores catalogs as JSON in a Cache.
type CatalogStore struct {
	cache Cache
	ttl   time.Duration
}

// NewCatalogStore wraps c. A non-positive ttl uses DefaultTTL.
func NewCatalogStore(c Cache, ttl time.Duration) *CatalogStore {
	if c == nil {
		c = NoOpCache{}
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CatalogStore{cache: c, ttl: ttl}
}

// Load returns the catalog stored for target. Undecodable entries are dropped.
func (s *CatalogStore) Load(ctx context.Context, target time.Time) (*catalog.Catalog, bool) {
	key := CatalogKey(target)
	raw, ok := s.cache.Get(ctx, key)
	if !ok {
		metrics.RecordCatalogCacheLookup(s.cache.Backend(), false)
		return nil, false
	}
	var cat catalog.Catalog
	if err := json.Unmarshal(raw, &cat); err != nil {
		s.cache.Delete(ctx, key)
		metrics.RecordCatalogCacheLookup(s.cache.Backend(), false)
		return nil, false
	}
	metrics.RecordCatalogCacheLookup(s.cache.Backend(), true)
	return &cat, true
}

// Store saves cat under its resolved target.
func (s *CatalogStore) Store(ctx context.Context, cat *catalog.Catalog) error {
	raw, err := json.Marshal(cat)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	s.cache.Set(ctx, CatalogKey(cat.Target), raw, s.ttl)
	return nil
}
