package geocoding

import (
	"halal-directory/internal/config"
	"halal-directory/internal/geocache"
	"halal-directory/internal/metrics"
	"halal-directory/internal/retry"

	"go.uber.org/zap"
)

// NewFromConfig wires the Google provider with the configured retry policy.
// Zero attempt or delay settings keep the defaults.
func NewFromConfig(cfg config.GeocodingConfig, cache geocache.Cache, m *metrics.Metrics, logger *zap.Logger) *Client {
	policy := retry.DefaultPolicy()
	if cfg.MaxAttempts > 0 {
		policy.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.BaseDelay > 0 {
		policy.BaseDelay = cfg.BaseDelay
	}

	if cfg.APIKey == "" {
		logger.Warn("GEOCODING_API_KEY is not set; provider requests will be rejected")
	}

	provider := NewGoogleProvider(cfg.BaseURL, cfg.APIKey, nil)
	return NewClient(provider, cache, policy, m, logger)
}
