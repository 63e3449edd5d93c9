package suspense

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus collectors of a renderer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "vango").
	Namespace string

	// Subsystem is the metrics subsystem (default: "suspense").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus collectors.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the render duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "vango",
		Subsystem: "suspense",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the collectors a renderer reports to. A nil *Metrics
// records nothing.
type Metrics struct {
	rendersTotal   *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	deferredTotal  *prometheus.CounterVec
	fallbacksTotal prometheus.Counter
	renderCycles   prometheus.Histogram
}

// NewMetrics creates and registers the collectors.
//
// Metrics collected:
//   - vango_suspense_renders_total: Counter of renders by mode and outcome
//   - vango_suspense_render_duration_seconds: Histogram of render duration by mode
//   - vango_suspense_deferred_total: Counter of deferred values by outcome
//   - vango_suspense_fallbacks_total: Counter of boundaries rendered as fallback
//   - vango_suspense_render_cycles: Histogram of evaluation cycles per render
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		rendersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of suspense renders",
			ConstLabels: config.ConstLabels,
		}, []string{"mode", "outcome"}),

		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Render duration in seconds, including time spent waiting on deferred values",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"mode"}),

		deferredTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "deferred_total",
			Help:        "Total number of deferred values met while rendering",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),

		fallbacksTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "fallbacks_total",
			Help:        "Total number of boundaries rendered as their fallback",
			ConstLabels: config.ConstLabels,
		}),

		renderCycles: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_cycles",
			Help:        "Number of evaluation cycles per render",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{1, 2, 4, 8, 16, 32, 64},
		}),
	}
}

func (m *Metrics) observe(mode, outcome string, elapsed time.Duration, s renderStats) {
	if m == nil {
		return
	}
	m.rendersTotal.WithLabelValues(mode, outcome).Inc()
	m.renderDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
	m.deferredTotal.WithLabelValues("settled").Add(float64(s.settled))
	m.deferredTotal.WithLabelValues("aborted").Add(float64(s.aborted))
	m.fallbacksTotal.Add(float64(s.fallbacks))
	m.renderCycles.Observe(float64(s.cycles))
}
