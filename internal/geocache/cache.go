// Package geocache stores resolved coordinates keyed by normalized location text.
package geocache

import (
	"context"
	"strings"
	"time"

	"halal-directory/internal/domain"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// DefaultTTL bounds how long a geocoding result is reused.
	DefaultTTL = time.Hour

	// DefaultMaxEntries bounds the in-memory cache; the least recently used entry is evicted first.
	DefaultMaxEntries = 10000
)

// Cache maps a location key to coordinates. Implementations are safe for
// concurrent use; a later Set for the same key wins.
type Cache interface {
	Get(ctx context.Context, key string) (domain.Coordinates, bool)
	Set(ctx context.Context, key string, coords domain.Coordinates)
}

// NormalizeKey trims, collapses inner whitespace and lower-cases location text
func NormalizeKey(location string) string {
	return strings.ToLower(strings.Join(strings.Fields(location), " "))
}

// MemoryCache is a size-bounded in-process cache with per-entry expiry
type MemoryCache struct {
	lru *expirable.LRU[string, domain.Coordinates]
}

// NewMemoryCache builds a cache; non-positive arguments fall back to the defaults
func NewMemoryCache(maxEntries int, ttl time.Duration) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &MemoryCache{
		lru: expirable.NewLRU[string, domain.Coordinates](maxEntries, nil, ttl),
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (domain.Coordinates, bool) {
	return c.lru.Get(key)
}

func (c *MemoryCache) Set(_ context.Context, key string, coords domain.Coordinates) {
	c.lru.Add(key, coords)
}

// Len returns the number of live entries
func (c *MemoryCache) Len() int {
	return c.lru.Len()
}
