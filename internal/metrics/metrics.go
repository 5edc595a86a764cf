package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Geocode outcome labels
const (
	OutcomeResolved    = "resolved"
	OutcomeNotFound    = "not_found"
	OutcomeUnavailable = "unavailable"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Geocoding metrics
	GeocodeRequests      *prometheus.CounterVec
	GeocodeProviderCalls prometheus.Counter
	GeocodeRetries       prometheus.Counter

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Business metrics
	ServicesCreated prometheus.Counter
	ClaimsRequested prometheus.Counter
	SearchesRun     *prometheus.CounterVec
}

// New creates a Metrics instance registered on its own registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),

		GeocodeRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geocode_requests_total",
				Help: "Geocoding resolutions by outcome",
			},
			[]string{"outcome"},
		),
		GeocodeProviderCalls: factory.NewCounter(prometheus.CounterOpts{
			Name: "geocode_provider_calls_total",
			Help: "Calls made to the external geocoding provider",
		}),
		GeocodeRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "geocode_retries_total",
			Help: "Provider calls that were retried after a transient failure",
		}),

		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "geocode_cache_hits_total",
			Help: "Coordinate cache hits",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "geocode_cache_misses_total",
			Help: "Coordinate cache misses",
		}),

		ServicesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "services_created_total",
			Help: "Listings created through the add path",
		}),
		ClaimsRequested: factory.NewCounter(prometheus.CounterOpts{
			Name: "business_claims_requested_total",
			Help: "Accepted business claim requests",
		}),
		SearchesRun: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "searches_total",
				Help: "Searches by kind (text or proximity)",
			},
			[]string{"kind"},
		),
	}
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware records request count and latency keyed by the matched route pattern
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		statusLabel := strconv.Itoa(status)

		m.HTTPRequestsTotal.WithLabelValues(r.Method, path, statusLabel).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, path, statusLabel).Observe(time.Since(start).Seconds())
	})
}

// The recorders below are nil-safe so components can run without metrics.

func (m *Metrics) RecordGeocode(outcome string) {
	if m == nil {
		return
	}
	m.GeocodeRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordProviderCall(attempt int) {
	if m == nil {
		return
	}
	m.GeocodeProviderCalls.Inc()
	if attempt > 1 {
		m.GeocodeRetries.Inc()
	}
}

func (m *Metrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.CacheMisses.Inc()
}

func (m *Metrics) RecordServiceCreated() {
	if m == nil {
		return
	}
	m.ServicesCreated.Inc()
}

func (m *Metrics) RecordClaimRequested() {
	if m == nil {
		return
	}
	m.ClaimsRequested.Inc()
}

func (m *Metrics) RecordSearch(proximity bool) {
	if m == nil {
		return
	}
	kind := "text"
	if proximity {
		kind = "proximity"
	}
	m.SearchesRun.WithLabelValues(kind).Inc()
}
