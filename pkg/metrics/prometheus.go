// Package metrics provides Prometheus metrics for the parkstats service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Route truncation outcomes.
const (
	OutcomeReached   = "reached"
	OutcomeUnreached = "unreached"
	OutcomeError     = "error"
)

// Manager manages all Prometheus metrics for the parkstats service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Dataset metrics
	recordsNormalized prometheus.Counter
	engineBuilds      *prometheus.CounterVec
	loadedRecords     prometheus.Gauge
	routePoints       prometheus.Gauge

	// Query metrics
	metricErrors           *prometheus.CounterVec
	routeTruncations       *prometheus.CounterVec
	routeTruncationLatency prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByType        *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "parkstats",
		subsystem:        "core",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.recordsNormalized = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "records_normalized_total",
		Help:        "Total number of result records normalized",
		ConstLabels: labels,
	})
	m.engineBuilds = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "engine_builds_total",
		Help:        "Statistics engine constructions by outcome",
		ConstLabels: labels,
	}, []string{"outcome"})
	m.loadedRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "loaded_records",
		Help:        "Number of records in the active dataset",
		ConstLabels: labels,
	})
	m.routePoints = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "route_points",
		Help:        "Number of points in the active route",
		ConstLabels: labels,
	})

	m.metricErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "metric_errors_total",
		Help:        "Metric queries that failed, by metric name",
		ConstLabels: labels,
	}, []string{"metric"})
	m.routeTruncations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "route_truncations_total",
		Help:        "Route truncations by outcome",
		ConstLabels: labels,
	}, []string{"outcome"})
	m.routeTruncationLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "route_truncation_latency_milliseconds",
		Help:        "Histogram of route truncation latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "requests_total",
		Help:        "Total number of HTTP requests",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})
	m.errorsByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "errors_total",
		Help:        "HTTP errors by type and severity",
		ConstLabels: labels,
	}, []string{"error_type", "severity"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "memory_bytes",
		Help:        "Allocated heap memory in bytes",
		ConstLabels: labels,
	})
	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "goroutines",
		Help:        "Number of goroutines",
		ConstLabels: labels,
	})
}

// RecordRecordsNormalized adds n to the normalized record counter.
func (m *Manager) RecordRecordsNormalized(n int) {
	if m.enabled {
		m.recordsNormalized.Add(float64(n))
	}
}

// RecordEngineBuild counts one engine construction with the given outcome.
func (m *Manager) RecordEngineBuild(outcome string) {
	if m.enabled {
		m.engineBuilds.WithLabelValues(outcome).Inc()
	}
}

// UpdateLoadedRecords sets the active dataset size.
func (m *Manager) UpdateLoadedRecords(n int) {
	if m.enabled {
		m.loadedRecords.Set(float64(n))
	}
}

// UpdateRoutePoints sets the active route size.
func (m *Manager) UpdateRoutePoints(n int) {
	if m.enabled {
		m.routePoints.Set(float64(n))
	}
}

// RecordMetricError counts a failed metric query.
func (m *Manager) RecordMetricError(metric string) {
	if m.enabled {
		m.metricErrors.WithLabelValues(metric).Inc()
	}
}

// RecordRouteTruncation counts a truncation and observes its latency.
func (m *Manager) RecordRouteTruncation(outcome string, latencyMs float64) {
	if m.enabled {
		m.routeTruncations.WithLabelValues(outcome).Inc()
		m.routeTruncationLatency.Observe(latencyMs)
	}
}

// RecordHTTPRequest counts one HTTP request and observes its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if m.enabled {
		m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
		m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	}
}

// RecordErrorByType counts an error by type and severity.
func (m *Manager) RecordErrorByType(errorType, severity string) {
	if m.enabled {
		m.errorsByType.WithLabelValues(errorType, severity).Inc()
	}
}

// UpdateSystem sets process memory and goroutine gauges.
func (m *Manager) UpdateSystem(memBytes uint64, goroutines int) {
	if m.enabled {
		m.systemMemoryUsage.Set(float64(memBytes))
		m.systemGoroutineCount.Set(float64(goroutines))
	}
}

// Global helpers delegate to the process-wide manager. They serve the HTTP
// middleware and the system ticker; the service takes its Manager by option.

func RecordErrorByType(errType, sev string) { globalManager.RecordErrorByType(errType, sev) }
func UpdateSystem(memBytes uint64, goroutines int) {
	globalManager.UpdateSystem(memBytes, goroutines)
}
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// Global returns the process-wide manager.
func Global() *Manager {
	return globalManager
}

// GetRegistry returns the registry backing the process-wide manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
