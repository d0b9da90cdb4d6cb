// Package metrics provides Prometheus metrics for the freeride rankings service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Upstream (Liveheats) traffic
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec

	// Aggregation pipeline
	seriesFetches     *prometheus.CounterVec
	parseWarnings     *prometheus.CounterVec
	athletesProcessed *prometheus.GaugeVec
	reportsBuilt      prometheus.Counter
	reportCacheHits   prometheus.Counter
	workersActive     prometheus.Gauge
	queueDepth        prometheus.Gauge
	queueRejected     *prometheus.CounterVec

	// Events cache
	cacheRefreshes *prometheus.CounterVec
	cacheSize      prometheus.Gauge
	cacheLastUnix  prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "fwtrank",
		subsystem:        "rankings",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for all collectors
	auto := promauto.With(m.registry)

	m.upstreamRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "upstream_requests_total",
		Help:      "GraphQL requests sent to Liveheats by operation and outcome",
	}, []string{"operation", "status"})

	m.upstreamLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "upstream_request_duration_milliseconds",
		Help:      "Liveheats request latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"operation"})

	m.seriesFetches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "series_fetch_total",
		Help:      "Per-series ranking fetches by outcome (ok, empty, error)",
	}, []string{"outcome"})

	m.parseWarnings = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "parse_warnings_total",
		Help:      "Raw records dropped or degraded while parsing, by record kind",
	}, []string{"kind"})

	m.athletesProcessed = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "athletes_processed",
		Help:      "Athletes in the last consolidated report, split by ranking history",
	}, []string{"kind"})

	m.reportsBuilt = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reports_built_total",
		Help:      "Athlete reports assembled from fresh upstream data",
	})

	m.reportCacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "report_cache_hits_total",
		Help:      "Athlete reports served from the in-process report store",
	})

	m.workersActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "workers_active",
		Help:      "Series fetch workers currently running",
	})

	m.queueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_queue_depth",
		Help:      "Series fetch jobs waiting in the queue",
	})

	m.queueRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_queue_rejected_total",
		Help:      "Series fetch jobs refused by the queue, by reason",
	}, []string{"reason"})

	m.cacheRefreshes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_cache_refresh_total",
		Help:      "Event list cache refreshes by status",
	}, []string{"status"})

	m.cacheSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_cache_size",
		Help:      "Number of upcoming events held in the cache",
	})

	m.cacheLastUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_cache_last_refresh_unix",
		Help:      "Unix time of the last successful event cache refresh",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.httpErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_errors_total",
		Help:      "HTTP responses with status >= 400 by endpoint and error type",
	}, []string{"endpoint", "error_type"})
}

// Manager methods.

func (m *Manager) RecordUpstreamRequest(operation, status string) {
	m.upstreamRequests.WithLabelValues(operation, status).Inc()
}

func (m *Manager) RecordUpstreamLatency(operation string, latencyMs float64) {
	m.upstreamLatency.WithLabelValues(operation).Observe(latencyMs)
}

func (m *Manager) RecordSeriesFetch(outcome string) {
	m.seriesFetches.WithLabelValues(outcome).Inc()
}

func (m *Manager) RecordParseWarning(kind string) {
	m.parseWarnings.WithLabelValues(kind).Inc()
}

func (m *Manager) UpdateAthletesProcessed(withResults, withoutResults int) {
	m.athletesProcessed.WithLabelValues("with_results").Set(float64(withResults))
	m.athletesProcessed.WithLabelValues("without_results").Set(float64(withoutResults))
}

func (m *Manager) RecordReportBuilt()    { m.reportsBuilt.Inc() }
func (m *Manager) RecordReportCacheHit() { m.reportCacheHits.Inc() }

func (m *Manager) UpdateWorkersActive(count int) {
	m.workersActive.Set(float64(count))
}

func (m *Manager) UpdateQueueDepth(depth int) {
	m.queueDepth.Set(float64(depth))
}

func (m *Manager) RecordQueueRejected(reason string) {
	m.queueRejected.WithLabelValues(reason).Inc()
}

func (m *Manager) RecordCacheRefresh(status string) {
	m.cacheRefreshes.WithLabelValues(status).Inc()
}

func (m *Manager) UpdateCacheSize(size int) {
	m.cacheSize.Set(float64(size))
}

func (m *Manager) UpdateCacheLastRefresh(unix int64) {
	m.cacheLastUnix.Set(float64(unix))
}

func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

func (m *Manager) RecordHTTPError(endpoint, errorType string) {
	m.httpErrors.WithLabelValues(endpoint, errorType).Inc()
}

// Package-level helpers delegate to the global manager.

func RecordUpstreamRequest(operation, status string) {
	globalManager.RecordUpstreamRequest(operation, status)
}

func RecordUpstreamLatency(operation string, latencyMs float64) {
	globalManager.RecordUpstreamLatency(operation, latencyMs)
}

func RecordSeriesFetch(outcome string) { globalManager.RecordSeriesFetch(outcome) }

func RecordParseWarning(kind string) { globalManager.RecordParseWarning(kind) }

func UpdateAthletesProcessed(withResults, withoutResults int) {
	globalManager.UpdateAthletesProcessed(withResults, withoutResults)
}

func RecordReportBuilt()    { globalManager.RecordReportBuilt() }
func RecordReportCacheHit() { globalManager.RecordReportCacheHit() }

func UpdateWorkersActive(count int) { globalManager.UpdateWorkersActive(count) }

func UpdateQueueDepth(depth int)        { globalManager.UpdateQueueDepth(depth) }
func RecordQueueRejected(reason string) { globalManager.RecordQueueRejected(reason) }

func RecordCacheRefresh(status string) { globalManager.RecordCacheRefresh(status) }
func UpdateCacheSize(size int)         { globalManager.UpdateCacheSize(size) }
func UpdateCacheLastRefresh(unix int64) {
	globalManager.UpdateCacheLastRefresh(unix)
}

func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

func RecordHTTPError(endpoint, errorType string) {
	globalManager.RecordHTTPError(endpoint, errorType)
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
