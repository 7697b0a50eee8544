// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"stock_compare/internal/feature/symbollist/domain/entity"
	"stock_compare/internal/feature/symbollist/usecase"
)

// CachingSymbolRepository decorates a SymbolRepository with Redis caching of
// catalog reads. It implements the decorator pattern, transparently adding
// caching without modifying the underlying repository.
type CachingSymbolRepository struct {
	inner     usecase.SymbolRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.SymbolRepository = (*CachingSymbolRepository)(nil)

// NewCachingSymbolRepository decorates a SymbolRepository with Redis caching.
// If ttl is 0, entries expire at the next 08:00 JST. If namespace is empty, it uses "symbols".
func NewCachingSymbolRepository(rdb *redis.Client, ttl time.Duration, inner usecase.SymbolRepository, namespace string) *CachingSymbolRepository {
	if ttl < 0 {
		ttl = 0
	}
	if namespace == "" {
		namespace = "symbols"
	}
	return &CachingSymbolRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// ListActive returns active symbols, checking the cache first.
func (c *CachingSymbolRepository) ListActive(ctx context.Context) ([]entity.Symbol, error) {
	return c.cached(ctx, c.namespace+":active", func() ([]entity.Symbol, error) {
		return c.inner.ListActive(ctx)
	})
}

// Search returns search results, checking the cache first.
func (c *CachingSymbolRepository) Search(ctx context.Context, query string, limit int) ([]entity.Symbol, error) {
	key := fmt.Sprintf("%s:search:%s:%d", c.namespace, safe(strings.ToLower(query)), limit)
	return c.cached(ctx, key, func() ([]entity.Symbol, error) {
		return c.inner.Search(ctx, query, limit)
	})
}

// FindByCodes is not cached: it runs once per chart selection and its key space is unbounded.
func (c *CachingSymbolRepository) FindByCodes(ctx context.Context, codes []string) ([]entity.Symbol, error) {
	return c.inner.FindByCodes(ctx, codes)
}

// Upsert writes through to the underlying repository and invalidates every cached read.
func (c *CachingSymbolRepository) Upsert(ctx context.Context, symbols []entity.Symbol) error {
	if err := c.inner.Upsert(ctx, symbols); err != nil {
		return err
	}
	if c.rdb == nil || len(symbols) == 0 {
		return nil
	}
	if err := c.deleteByPattern(ctx, c.namespace+":*"); err != nil {
		// Best effort: stale entries expire with their TTL
		slog.Warn("failed to invalidate symbol cache", "namespace", c.namespace, "error", err)
	}
	return nil
}

func (c *CachingSymbolRepository) cached(ctx context.Context, key string, load func() ([]entity.Symbol, error)) ([]entity.Symbol, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return load()
	}

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.Symbol
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := load()
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.expiry()).Err()
	}
	return out, nil
}

// expiry returns the configured TTL, or the time until the next 08:00 JST.
func (c *CachingSymbolRepository) expiry() time.Duration {
	if c.ttl > 0 {
		return c.ttl
	}
	return TimeUntilNext8AM()
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingSymbolRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	s = strings.ReplaceAll(s, "*", "_")
	return s
}
