package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Default histogram layouts. Latencies are in milliseconds; a CSV year loads
// in tens of milliseconds and a cold SQLite year in a few hundred.
var (
	DefaultLatencyBuckets   = []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000} //nolint:gochecknoglobals // read-only defaults
	DefaultRowBuckets       = prometheus.LinearBuckets(500, 500, 8)                                  //nolint:gochecknoglobals // read-only defaults
	DefaultSelectionBuckets = []float64{0, 1, 2, 5, 9, 18, 63, 270, 1000, 3300}                      //nolint:gochecknoglobals // read-only defaults
)

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem sets the subsystem for all metrics.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		m.subsystem = subsystem
	}
}

// WithHistogramBuckets sets the millisecond buckets of the latency histograms.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithRowBuckets sets the buckets of the cycles-per-table histogram. A
// nine-cycle schedule yields about 3300 rows per year.
func WithRowBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.rowBuckets = buckets
		}
	}
}

// WithSelectionBuckets sets the buckets of the indices-per-selection
// histogram.
func WithSelectionBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.selectionBuckets = buckets
		}
	}
}

// WithPrometheusRegistry sets a custom Prometheus registry.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}
