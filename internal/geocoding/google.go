package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"halal-directory/internal/domain"
	"halal-directory/internal/retry"
)

const (
	DefaultGoogleBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

	statusOK             = "OK"
	statusZeroResults    = "ZERO_RESULTS"
	statusOverQueryLimit = "OVER_QUERY_LIMIT"
	statusUnknownError   = "UNKNOWN_ERROR"

	defaultHTTPTimeout = 10 * time.Second
	maxResponseBytes   = 1 << 20
)

// GoogleProvider calls the Google Geocoding JSON API
type GoogleProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewGoogleProvider builds a provider; an empty baseURL uses the public endpoint
func NewGoogleProvider(baseURL, apiKey string, httpClient *http.Client) *GoogleProvider {
	if baseURL == "" {
		baseURL = DefaultGoogleBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &GoogleProvider{baseURL: baseURL, apiKey: apiKey, httpClient: httpClient}
}

type googleResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Lookup performs a single provider call. Rate limiting, transport failures,
// 5xx responses and undecodable bodies are returned as retryable errors.
func (p *GoogleProvider) Lookup(ctx context.Context, location string) (domain.Coordinates, error) {
	params := url.Values{}
	params.Set("address", location)
	if p.apiKey != "" {
		params.Set("key", p.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("failed to build geocode request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return domain.Coordinates{}, ctx.Err()
		}
		return domain.Coordinates{}, retry.Retryable(fmt.Errorf("geocode request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return domain.Coordinates{}, retry.Retryable(fmt.Errorf("%w: http %d", ErrRateLimited, resp.StatusCode))
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return domain.Coordinates{}, retry.Retryable(fmt.Errorf("geocode provider returned http %d", resp.StatusCode))
	}

	var result googleResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&result); err != nil {
		return domain.Coordinates{}, retry.Retryable(fmt.Errorf("failed to decode geocode response: %w", err))
	}

	switch result.Status {
	case statusOK:
		if len(result.Results) == 0 {
			return domain.Coordinates{}, ErrLocationNotFound
		}
		loc := result.Results[0].Geometry.Location
		return domain.Coordinates{Latitude: loc.Lat, Longitude: loc.Lng}, nil
	case statusOverQueryLimit:
		return domain.Coordinates{}, retry.Retryable(fmt.Errorf("%w: %s", ErrRateLimited, result.Status))
	case statusUnknownError:
		return domain.Coordinates{}, retry.Retryable(fmt.Errorf("geocode provider status %s", result.Status))
	case statusZeroResults:
		return domain.Coordinates{}, ErrLocationNotFound
	default:
		return domain.Coordinates{}, fmt.Errorf("%w: provider status %s %s", ErrLocationNotFound, result.Status, result.ErrorMessage)
	}
}
