// Package metrics exposes Prometheus metrics for the API and its upstream calls.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "moodshift"

// Manager owns the service's collectors and the registry they live in.
type Manager struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	spotifyCalls        *prometheus.CounterVec
	spotifyCallDuration *prometheus.HistogramVec
}

// Option configures a Manager.
type Option func(*Manager)

// WithRegistry registers the collectors on r instead of a fresh registry.
func WithRegistry(r *prometheus.Registry) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

// WithRuntimeCollectors adds the Go runtime and process collectors.
func WithRuntimeCollectors() Option {
	return func(m *Manager) {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
}

// NewManager creates a Manager. Options run in order, so WithRegistry must
// precede WithRuntimeCollectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{registry: prometheus.NewRegistry()}
	for _, opt := range opts {
		opt(m)
	}

	auto := promauto.With(m.registry)
	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "status"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})
	m.spotifyCalls = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "spotify",
		Name:      "calls_total",
		Help:      "Spotify Web API calls by operation and outcome.",
	}, []string{"op", "outcome"})
	m.spotifyCallDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "spotify",
		Name:      "call_duration_seconds",
		Help:      "Spotify Web API latency by operation.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"op"})

	return m
}

// ObserveHTTPRequest records one served request. route is the matched
// pattern, not the raw path.
func (m *Manager) ObserveHTTPRequest(route, method string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// ObserveSpotifyCall records one Web API call.
func (m *Manager) ObserveSpotifyCall(op string, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.spotifyCalls.WithLabelValues(op, outcome).Inc()
	m.spotifyCallDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// Registry returns the underlying registry.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
