package geocache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"halal-directory/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "geocode:"

type redisEntry struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RedisCache shares geocoding results between API replicas.
// Redis failures degrade to cache misses.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

func (c *RedisCache) Get(ctx context.Context, key string) (domain.Coordinates, bool) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Geocode cache read failed", zap.String("key", key), zap.Error(err))
		}
		return domain.Coordinates{}, false
	}

	var entry redisEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		c.logger.Warn("Discarding malformed geocode cache entry", zap.String("key", key), zap.Error(err))
		return domain.Coordinates{}, false
	}

	return domain.Coordinates{Latitude: entry.Lat, Longitude: entry.Lng}, true
}

func (c *RedisCache) Set(ctx context.Context, key string, coords domain.Coordinates) {
	payload, err := json.Marshal(redisEntry{Lat: coords.Latitude, Lng: coords.Longitude})
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, redisKeyPrefix+key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("Geocode cache write failed", zap.String("key", key), zap.Error(err))
	}
}
