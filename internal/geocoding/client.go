// Package geocoding resolves free-text locations into coordinates.
package geocoding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"halal-directory/internal/domain"
	"halal-directory/internal/geo"
	"halal-directory/internal/geocache"
	"halal-directory/internal/metrics"
	"halal-directory/internal/retry"

	"go.uber.org/zap"
)

var (
	// ErrLocationNotFound means the provider answered but had no match
	ErrLocationNotFound = errors.New("location not found")

	// ErrProviderUnavailable means the provider could not be reached within the retry budget
	ErrProviderUnavailable = errors.New("geocoding service unavailable")

	// ErrRateLimited marks a provider rate-limit response
	ErrRateLimited = errors.New("geocoding provider rate limited")
)

// Provider performs one lookup against an external geocoding API.
// Transient failures must be wrapped with retry.Retryable.
type Provider interface {
	Lookup(ctx context.Context, location string) (domain.Coordinates, error)
}

// Client resolves locations through a cache and a retry policy
type Client struct {
	provider Provider
	cache    geocache.Cache
	policy   retry.Policy
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewClient(provider Provider, cache geocache.Cache, policy retry.Policy, m *metrics.Metrics, logger *zap.Logger) *Client {
	if cache == nil {
		cache = geocache.NewMemoryCache(geocache.DefaultMaxEntries, geocache.DefaultTTL)
	}
	return &Client{
		provider: provider,
		cache:    cache,
		policy:   policy,
		metrics:  m,
		logger:   logger,
	}
}

// Resolve returns coordinates rounded to six decimals.
// The error wraps ErrLocationNotFound or ErrProviderUnavailable.
func (c *Client) Resolve(ctx context.Context, location string) (domain.Coordinates, error) {
	key := geocache.NormalizeKey(location)
	if key == "" {
		return domain.Coordinates{}, ErrLocationNotFound
	}

	if coords, ok := c.cache.Get(ctx, key); ok {
		c.metrics.RecordCacheHit()
		c.metrics.RecordGeocode(metrics.OutcomeResolved)
		return coords, nil
	}
	c.metrics.RecordCacheMiss()

	var coords domain.Coordinates
	err := c.policy.Do(ctx, func(ctx context.Context, attempt int) error {
		c.metrics.RecordProviderCall(attempt)

		found, err := c.provider.Lookup(ctx, strings.TrimSpace(location))
		if err != nil {
			if retry.IsRetryable(err) {
				c.logger.Warn("Geocode attempt failed",
					zap.String("location", key),
					zap.Int("attempt", attempt),
					zap.Error(err),
				)
			}
			return err
		}
		coords = found
		return nil
	})
	if err != nil {
		return domain.Coordinates{}, c.classify(key, err)
	}

	coords = geo.RoundCoordinates(coords)
	if !geo.Valid(coords) {
		c.metrics.RecordGeocode(metrics.OutcomeNotFound)
		return domain.Coordinates{}, fmt.Errorf("%w: provider returned out-of-range coordinates", ErrLocationNotFound)
	}

	c.cache.Set(ctx, key, coords)
	c.metrics.RecordGeocode(metrics.OutcomeResolved)
	return coords, nil
}

// ResolveFirst tries each candidate in order and returns the first match.
// Not-found moves on to the next candidate; any other failure stops immediately.
func (c *Client) ResolveFirst(ctx context.Context, candidates ...string) (domain.Coordinates, error) {
	for _, candidate := range candidates {
		coords, err := c.Resolve(ctx, candidate)
		if err == nil {
			return coords, nil
		}
		if !errors.Is(err, ErrLocationNotFound) {
			return domain.Coordinates{}, err
		}
	}
	return domain.Coordinates{}, ErrLocationNotFound
}

func (c *Client) classify(key string, err error) error {
	var exhausted *retry.ExhaustedError
	switch {
	case errors.Is(err, ErrLocationNotFound):
		c.metrics.RecordGeocode(metrics.OutcomeNotFound)
		return err
	case errors.As(err, &exhausted):
		c.metrics.RecordGeocode(metrics.OutcomeUnavailable)
		c.logger.Error("Geocoding retries exhausted",
			zap.String("location", key),
			zap.Int("attempts", exhausted.Attempts),
			zap.Error(exhausted.Err),
		)
		return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.metrics.RecordGeocode(metrics.OutcomeUnavailable)
		return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	default:
		c.metrics.RecordGeocode(metrics.OutcomeUnavailable)
		c.logger.Error("Geocoding failed", zap.String("location", key), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
}
