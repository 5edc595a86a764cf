package geocache

import (
	"fmt"

	"halal-directory/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache backends accepted in GEOCODING_CACHE_BACKEND
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// FromConfig builds the configured backend. The redis backend needs a client.
func FromConfig(cfg config.GeocodingConfig, client *redis.Client, logger *zap.Logger) (Cache, error) {
	switch cfg.CacheBackend {
	case "", BackendMemory:
		return NewMemoryCache(cfg.CacheSize, cfg.CacheTTL), nil
	case BackendRedis:
		if client == nil {
			return nil, fmt.Errorf("geocode cache backend %q requires REDIS_ENABLED=true", BackendRedis)
		}
		return NewRedisCache(client, cfg.CacheTTL, logger), nil
	default:
		return nil, fmt.Errorf("unknown geocode cache backend %q", cfg.CacheBackend)
	}
}
