// Package metrics provides Prometheus metrics for the profilemeta service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	rowBuckets       []float64
	selectionBuckets []float64
	registry         prometheus.Registerer

	// Metadata table loading
	tableLoads       *prometheus.CounterVec
	tableLoadLatency *prometheus.HistogramVec
	tableRows        prometheus.Histogram
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter

	// Window selection
	selections      *prometheus.CounterVec
	selectedIndices prometheus.Histogram

	// Profile evaluation
	evaluations      prometheus.Counter
	classifiedCycles *prometheus.CounterVec
	anomalies        prometheus.Counter

	// Batch audits
	auditJobs       *prometheus.CounterVec
	auditJobLatency prometheus.Histogram
	auditWorkers    prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "profilemeta",
		subsystem:        "",
		histogramBuckets: DefaultLatencyBuckets,
		rowBuckets:       DefaultRowBuckets,
		selectionBuckets: DefaultSelectionBuckets,
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

	m.tableLoads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "table_loads_total",
		Help:      "Metadata table loads by source kind and result",
	}, []string{"source", "result"})

	m.tableLoadLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "table_load_latency_milliseconds",
		Help:      "Latency of metadata table loads in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"source"})

	m.tableRows = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "table_rows",
		Help:      "Number of profiling cycles per loaded table",
		Buckets:   m.rowBuckets,
	})

	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "table_cache_hits_total",
		Help:      "Metadata table cache hits",
	})

	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "table_cache_misses_total",
		Help:      "Metadata table cache misses",
	})

	m.selections = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "window_selections_total",
		Help:      "Window index selections by caller (window or nearest)",
	}, []string{"kind"})

	m.selectedIndices = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "window_selected_indices",
		Help:      "Number of cycle indices returned per selection",
		Buckets:   m.selectionBuckets,
	})

	m.evaluations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "evaluations_total",
		Help:      "Profile evaluations run",
	})

	m.classifiedCycles = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "evaluation_cycles_total",
		Help:      "Cycles seen by evaluations, by class (midnight, noon, short_descent)",
	}, []string{"class"})

	m.anomalies = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "evaluation_anomalies_total",
		Help:      "Long-descent cycles that matched neither the midnight nor the noon band",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.auditJobs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "audit_jobs_total",
		Help:      "Site-year audit jobs by result",
	}, []string{"result"})

	m.auditJobLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "audit_job_latency_milliseconds",
		Help:      "Time spent evaluating one site-year",
		Buckets:   m.histogramBuckets,
	})

	m.auditWorkers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "audit_workers_active",
		Help:      "Audit workers currently running",
	})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_total",
		Help:      "Errors by component and type",
	}, []string{"component", "error_type"})
}

// RecordTableLoad counts a table load attempt and its latency.
func RecordTableLoad(source, result string, latencyMs float64) {
	globalManager.tableLoads.WithLabelValues(source, result).Inc()
	globalManager.tableLoadLatency.WithLabelValues(source).Observe(latencyMs)
}

// ObserveTableRows records the size of a loaded table.
func ObserveTableRows(rows int) {
	globalManager.tableRows.Observe(float64(rows))
}

// RecordCacheHit counts a table cache hit.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss counts a table cache miss.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// RecordSelection counts a window selection and how many indices it matched.
func RecordSelection(kind string, matched int) {
	globalManager.selections.WithLabelValues(kind).Inc()
	globalManager.selectedIndices.Observe(float64(matched))
}

// RecordEvaluation counts an evaluation and its per-class results.
func RecordEvaluation(midnight, noon, shortDescent, anomalies int) {
	globalManager.evaluations.Inc()
	globalManager.classifiedCycles.WithLabelValues("midnight").Add(float64(midnight))
	globalManager.classifiedCycles.WithLabelValues("noon").Add(float64(noon))
	globalManager.classifiedCycles.WithLabelValues("short_descent").Add(float64(shortDescent))
	globalManager.anomalies.Add(float64(anomalies))
}

// RecordAuditJob counts a finished audit job and its latency.
func RecordAuditJob(result string, latencyMs float64) {
	globalManager.auditJobs.WithLabelValues(result).Inc()
	globalManager.auditJobLatency.Observe(latencyMs)
}

// AddAuditWorkers adjusts the active audit worker gauge by delta.
func AddAuditWorkers(delta int) {
	globalManager.auditWorkers.Add(float64(delta))
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request latency.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordError counts an error attributed to a component.
func RecordError(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom registry that backs /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
