// Package metrics exposes Prometheus metrics for mood detection, playlist
// resolution, catalog searches and the HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mood_music"

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds the service's collectors and the registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	detectionsTotal   *prometheus.CounterVec
	resolutionsTotal  *prometheus.CounterVec
	searchesTotal     *prometheus.CounterVec
	searchDuration    prometheus.Histogram
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// New creates a registry with Go runtime and process collectors plus the
// service metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(registry)
}

// NewWithRegistry registers the service metrics with registry.
func NewWithRegistry(registry *prometheus.Registry) *Metrics {
	m := &Metrics{registry: registry}

	m.detectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detections_total",
			Help:      "Total number of mood detections by resulting mood and outcome",
		},
		[]string{"mood", "outcome"}, // outcome: ok, error
	)

	m.resolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "playlist_resolutions_total",
			Help:      "Total number of playlist resolutions by mood and outcome",
		},
		[]string{"mood", "outcome"},
	)

	m.searchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_searches_total",
			Help:      "Total number of catalog track searches",
		},
		[]string{"outcome"},
	)

	m.searchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_search_duration_seconds",
			Help:      "Time taken by a single catalog track search",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)

	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route, method and status code",
		},
		[]string{"route", "method", "status_code"},
	)

	m.httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	registry.MustRegister(
		m.detectionsTotal,
		m.resolutionsTotal,
		m.searchesTotal,
		m.searchDuration,
		m.httpRequestsTotal,
		m.httpDuration,
	)
	return m
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordDetection counts one mood detection.
func (m *Metrics) RecordDetection(mood, outcome string) {
	m.detectionsTotal.WithLabelValues(mood, outcome).Inc()
}

// RecordResolution counts one playlist resolution.
func (m *Metrics) RecordResolution(mood, outcome string) {
	m.resolutionsTotal.WithLabelValues(mood, outcome).Inc()
}

// RecordSearch counts one catalog search and its latency. Its signature
// matches playlist.SearchObserver.
func (m *Metrics) RecordSearch(outcome string, elapsed time.Duration) {
	m.searchesTotal.WithLabelValues(outcome).Inc()
	m.searchDuration.Observe(elapsed.Seconds())
}

// Middleware records request counts and latency keyed by the chi route
// pattern, so path parameters do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
