package geocoding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"halal-directory/internal/domain"
	"halal-directory/internal/geocache"
	"halal-directory/internal/metrics"
	"halal-directory/internal/retry"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fastPolicy keeps the production shape with millisecond delays
func fastPolicy() retry.Policy {
	p := retry.DefaultPolicy()
	p.BaseDelay = time.Millisecond
	return p
}

type fakeProvider struct {
	calls   atomic.Int32
	respond func(call int, location string) (domain.Coordinates, error)
}

func (f *fakeProvider) Lookup(_ context.Context, location string) (domain.Coordinates, error) {
	n := int(f.calls.Add(1))
	return f.respond(n, location)
}

func newTestClient(p Provider) *Client {
	return NewClient(p, geocache.NewMemoryCache(100, time.Minute), fastPolicy(), nil, zap.NewNop())
}

// googleServer answers with status for the first rateLimited calls and OK afterwards
func googleServer(t *testing.T, rateLimited int, lat, lng float64) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1))
		w.Header().Set("Content-Type", "application/json")
		if n <= rateLimited {
			fmt.Fprint(w, `{"status":"OVER_QUERY_LIMIT","results":[]}`)
			return
		}
		fmt.Fprintf(w, `{"status":"OK","results":[{"geometry":{"location":{"lat":%v,"lng":%v}}}]}`, lat, lng)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestResolve_SucceedsAfterThreeRateLimits(t *testing.T) {
	srv, calls := googleServer(t, 3, 39.7817213, -89.6501481)
	client := newTestClient(NewGoogleProvider(srv.URL, "key", srv.Client()))

	coords, err := client.Resolve(context.Background(), "Springfield, IL")
	require.NoError(t, err)

	assert.Equal(t, int32(4), calls.Load())
	assert.Equal(t, domain.Coordinates{Latitude: 39.781721, Longitude: -89.650148}, coords)
}

func TestResolve_SixRateLimitsIsTerminal(t *testing.T) {
	srv, calls := googleServer(t, 6, 1, 1)
	client := newTestClient(NewGoogleProvider(srv.URL, "key", srv.Client()))

	_, err := client.Resolve(context.Background(), "Springfield, IL")
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.False(t, errors.Is(err, ErrLocationNotFound), "unavailable must not look like not-found")
	assert.Equal(t, int32(5), calls.Load())
}

func TestResolve_ZeroResultsIsNotFoundWithoutRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"status":"ZERO_RESULTS","results":[]}`)
	}))
	defer srv.Close()

	client := newTestClient(NewGoogleProvider(srv.URL, "", srv.Client()))

	_, err := client.Resolve(context.Background(), "Nowhere, ZZ")
	assert.ErrorIs(t, err, ErrLocationNotFound)
	assert.False(t, errors.Is(err, ErrProviderUnavailable))
	assert.Equal(t, int32(1), calls.Load())
}

func TestResolve_OtherStatusIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"INVALID_REQUEST","results":[]}`)
	}))
	defer srv.Close()

	client := newTestClient(NewGoogleProvider(srv.URL, "", srv.Client()))

	_, err := client.Resolve(context.Background(), "???")
	assert.ErrorIs(t, err, ErrLocationNotFound)
}

func TestResolve_TransportFailuresAreRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.WriteHeader(http.StatusBadGateway)
		case 2:
			fmt.Fprint(w, `{not json`)
		default:
			fmt.Fprint(w, `{"status":"OK","results":[{"geometry":{"location":{"lat":41.878113,"lng":-87.629799}}}]}`)
		}
	}))
	defer srv.Close()

	client := newTestClient(NewGoogleProvider(srv.URL, "", srv.Client()))

	coords, err := client.Resolve(context.Background(), "Chicago, IL")
	require.NoError(t, err)
	assert.Equal(t, 41.878113, coords.Latitude)
	assert.Equal(t, int32(3), calls.Load())
}

func TestResolve_HTTP429IsRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := newTestClient(NewGoogleProvider(srv.URL, "", srv.Client()))

	_, err := client.Resolve(context.Background(), "Chicago, IL")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestResolve_SendsAddressAndKey(t *testing.T) {
	var gotAddress, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAddress = r.URL.Query().Get("address")
		gotKey = r.URL.Query().Get("key")
		fmt.Fprint(w, `{"status":"OK","results":[{"geometry":{"location":{"lat":1,"lng":2}}}]}`)
	}))
	defer srv.Close()

	client := newTestClient(NewGoogleProvider(srv.URL, "secret", srv.Client()))

	_, err := client.Resolve(context.Background(), "  123 Main St, Austin, TX ")
	require.NoError(t, err)
	assert.Equal(t, "123 Main St, Austin, TX", gotAddress)
	assert.Equal(t, "secret", gotKey)
}

func TestResolve_CacheHitSkipsProvider(t *testing.T) {
	srv, calls := googleServer(t, 0, 39.78, -89.65)
	m := metrics.New()
	client := NewClient(NewGoogleProvider(srv.URL, "", srv.Client()), geocache.NewMemoryCache(10, time.Minute), fastPolicy(), m, zap.NewNop())

	first, err := client.Resolve(context.Background(), "Springfield, IL")
	require.NoError(t, err)
	second, err := client.Resolve(context.Background(), "  springfield,   il")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheHits))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheMisses))
}

func TestResolve_NotFoundIsNotCached(t *testing.T) {
	provider := &fakeProvider{respond: func(call int, _ string) (domain.Coordinates, error) {
		if call == 1 {
			return domain.Coordinates{}, ErrLocationNotFound
		}
		return domain.Coordinates{Latitude: 10, Longitude: 20}, nil
	}}
	client := newTestClient(provider)

	_, err := client.Resolve(context.Background(), "Later, TX")
	assert.ErrorIs(t, err, ErrLocationNotFound)

	coords, err := client.Resolve(context.Background(), "Later, TX")
	require.NoError(t, err)
	assert.Equal(t, 10.0, coords.Latitude)
}

func TestResolve_EmptyInput(t *testing.T) {
	provider := &fakeProvider{respond: func(int, string) (domain.Coordinates, error) {
		return domain.Coordinates{}, nil
	}}
	client := newTestClient(provider)

	_, err := client.Resolve(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrLocationNotFound)
	assert.Equal(t, int32(0), provider.calls.Load())
}

func TestResolve_CancelledContextIsUnavailable(t *testing.T) {
	provider := &fakeProvider{respond: func(int, string) (domain.Coordinates, error) {
		return domain.Coordinates{}, retry.Retryable(errors.New("flaky"))
	}}
	client := NewClient(provider, nil, retry.Policy{MaxAttempts: 5, BaseDelay: time.Hour, Multiplier: 2}, nil, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Resolve(ctx, "Anywhere")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.Equal(t, int32(1), provider.calls.Load())
}

func TestResolveFirst_FallsBackOnNotFound(t *testing.T) {
	provider := &fakeProvider{respond: func(_ int, location string) (domain.Coordinates, error) {
		if location == "Springfield, IL" {
			return domain.Coordinates{Latitude: 39.78, Longitude: -89.65}, nil
		}
		return domain.Coordinates{}, ErrLocationNotFound
	}}
	client := newTestClient(provider)

	coords, err := client.ResolveFirst(context.Background(), "1 Nowhere Rd, Springfield, IL 62701, US", "Springfield, IL")
	require.NoError(t, err)
	assert.Equal(t, 39.78, coords.Latitude)
	assert.Equal(t, int32(2), provider.calls.Load())
}

func TestResolveFirst_StopsOnUnavailable(t *testing.T) {
	provider := &fakeProvider{respond: func(int, string) (domain.Coordinates, error) {
		return domain.Coordinates{}, errors.New("boom")
	}}
	client := newTestClient(provider)

	_, err := client.ResolveFirst(context.Background(), "a", "b")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.Equal(t, int32(1), provider.calls.Load())
}

// Property: every coordinate handed back is rounded to six decimals
func TestProperty_ResolvedCoordinatesAreRounded(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("latitude and longitude keep at most six decimals", prop.ForAll(
		func(lat, lon float64) bool {
			provider := &fakeProvider{respond: func(int, string) (domain.Coordinates, error) {
				return domain.Coordinates{Latitude: lat, Longitude: lon}, nil
			}}
			client := newTestClient(provider)

			coords, err := client.Resolve(context.Background(), "somewhere")
			if err != nil {
				return false
			}
			return hasAtMostSixDecimals(coords.Latitude) && hasAtMostSixDecimals(coords.Longitude)
		},
		gen.Float64Range(-90, 90),
		gen.Float64Range(-180, 180),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Property: a second resolution within the TTL returns the same value without another provider call
func TestProperty_CacheHitWithinTTL(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("second resolve is served from cache", prop.ForAll(
		func(city string, lat, lon float64) bool {
			provider := &fakeProvider{respond: func(int, string) (domain.Coordinates, error) {
				return domain.Coordinates{Latitude: lat, Longitude: lon}, nil
			}}
			client := newTestClient(provider)
			location := city + ", IL"

			first, err := client.Resolve(context.Background(), location)
			if err != nil {
				return false
			}
			second, err := client.Resolve(context.Background(), location)
			if err != nil {
				return false
			}
			return first == second && provider.calls.Load() == 1
		},
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
		gen.Float64Range(-90, 90),
		gen.Float64Range(-180, 180),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func hasAtMostSixDecimals(v float64) bool {
	s := fmt.Sprintf("%.10f", v)
	return s[len(s)-4:] == "0000"
}
