// Package metrics provides Prometheus metrics for the sensorboard dashboard.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcomes used as the "outcome" label on fetch counters.
const (
	OutcomeApplied    = "applied"
	OutcomeSuperseded = "superseded"
	OutcomeNetwork    = "network_error"
	OutcomeMalformed  = "malformed_response"
	OutcomeRender     = "render_error"
)

// sensorStatuses are the accepted values of the "status" label.
var sensorStatuses = map[string]struct{}{ //nolint:gochecknoglobals // fixed label set
	"normal":   {},
	"warning":  {},
	"offline":  {},
	"disabled": {},
}

// fetchOutcomes are the accepted values of the "outcome" label.
var fetchOutcomes = map[string]struct{}{ //nolint:gochecknoglobals // fixed label set
	OutcomeApplied:    {},
	OutcomeSuperseded: {},
	OutcomeNetwork:    {},
	OutcomeMalformed:  {},
	OutcomeRender:     {},
}

// Manager manages all Prometheus metrics for the dashboard.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Refresh pipeline
	fetches          *prometheus.CounterVec
	fetchLatency     prometheus.Histogram
	renders          prometheus.Counter
	renderLatency    prometheus.Histogram
	chartHandles     prometheus.Gauge
	refreshSessions  prometheus.Gauge
	sensorsByStatus  *prometheus.GaugeVec
	lastSnapshotUnix prometheus.Gauge

	// Backend REST client
	backendRequests        *prometheus.CounterVec
	backendRequestDuration *prometheus.HistogramVec

	// HTTP server
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error tracking
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "sensorboard",
		subsystem:        "dashboard",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels, Buckets: m.histogramBuckets}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.fetches = auto.NewCounterVec(m.counterOpts("fetches_total",
		"Status summary fetches by outcome"), []string{"outcome"})
	m.fetchLatency = auto.NewHistogram(m.histogramOpts("fetch_latency_milliseconds",
		"Latency of status summary fetches in milliseconds"))
	m.renders = auto.NewCounter(m.counterOpts("renders_total",
		"Charts rendered onto the surface"))
	m.renderLatency = auto.NewHistogram(m.histogramOpts("render_latency_milliseconds",
		"Chart render latency in milliseconds"))
	m.chartHandles = auto.NewGauge(m.gaugeOpts("chart_handles",
		"Live chart handles (0 or 1)"))
	m.refreshSessions = auto.NewGauge(m.gaugeOpts("refresh_sessions",
		"Active auto-refresh sessions (0 or 1)"))
	m.sensorsByStatus = auto.NewGaugeVec(m.gaugeOpts("sensors",
		"Sensor count in the last applied snapshot by status"), []string{"status"})
	m.lastSnapshotUnix = auto.NewGauge(m.gaugeOpts("last_snapshot_unix",
		"Unix timestamp of the last applied snapshot"))

	m.backendRequests = auto.NewCounterVec(m.counterOpts("backend_requests_total",
		"Requests sent to the SDMM backend"), []string{"endpoint", "method", "status_code"})
	m.backendRequestDuration = auto.NewHistogramVec(m.histogramOpts("backend_request_duration_milliseconds",
		"SDMM backend request duration in milliseconds"), []string{"endpoint", "method"})

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"Total number of HTTP requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds"), []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total",
		"Total number of errors by component"), []string{"component", "error_type"})
	m.errorRateByType = auto.NewCounterVec(m.counterOpts("errors_by_type_total",
		"Total number of errors by type"), []string{"error_type", "severity"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total",
		"Total number of errors by endpoint"), []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes",
		"System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count",
		"Number of goroutines"))
}

// RecordFetch counts one fetch with the given outcome and its latency.
func RecordFetch(outcome string, latency time.Duration) error {
	if _, ok := fetchOutcomes[outcome]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOutcome, outcome)
	}
	globalManager.fetches.WithLabelValues(outcome).Inc()
	globalManager.fetchLatency.Observe(float64(latency.Milliseconds()))
	return nil
}

// RecordRender counts a successful render and its latency.
func RecordRender(latency time.Duration) {
	globalManager.renders.Inc()
	globalManager.renderLatency.Observe(float64(latency.Milliseconds()))
}

// UpdateChartHandles sets the number of live chart handles.
func UpdateChartHandles(n int) {
	globalManager.chartHandles.Set(float64(n))
}

// UpdateRefreshSessions sets the number of active refresh sessions.
func UpdateRefreshSessions(n int) {
	globalManager.refreshSessions.Set(float64(n))
}

// UpdateSensorStatus sets the gauge for one status category.
func UpdateSensorStatus(status string, count int) error {
	if _, ok := sensorStatuses[status]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}
	globalManager.sensorsByStatus.WithLabelValues(status).Set(float64(count))
	return nil
}

// UpdateLastSnapshot records when the last snapshot was applied.
func UpdateLastSnapshot(at time.Time) {
	globalManager.lastSnapshotUnix.Set(float64(at.Unix()))
}

// RecordBackendRequest records one call to the SDMM backend.
func RecordBackendRequest(endpoint, method, statusCode string, duration time.Duration) {
	globalManager.backendRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	globalManager.backendRequestDuration.WithLabelValues(endpoint, method).Observe(float64(duration.Milliseconds()))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
