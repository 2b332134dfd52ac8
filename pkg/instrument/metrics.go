package instrument

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus reporter.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "uielement").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are added to every metric.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for evaluation durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus reporter.
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

// WithBuckets sets the duration histogram buckets.
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
		Namespace: "uielement",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics records graph and session activity as Prometheus metrics.
//
// Metrics collected:
//   - uielement_computed_evaluations_total: producer runs by status
//   - uielement_computed_duration_seconds: producer run duration
//   - uielement_effect_runs_total: effect runs by status
//   - uielement_effect_duration_seconds: effect run duration
//   - uielement_flush_effect_runs: effects run per flush
//   - uielement_active_sessions: open live sessions
//   - uielement_session_events_total: events dispatched into live sessions
type Metrics struct {
	computedTotal    *prometheus.CounterVec
	computedDuration prometheus.Histogram
	effectTotal      *prometheus.CounterVec
	effectDuration   prometheus.Histogram
	flushRuns        prometheus.Histogram
	activeSessions   prometheus.Gauge
	sessionEvents    *prometheus.CounterVec
}

// NewMetrics registers the metrics with the configured registry. Registering
// twice with the same registry panics, as promauto does.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		computedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "computed_evaluations_total",
			Help:        "Total number of computed producer runs",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		computedDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "computed_duration_seconds",
			Help:        "Computed producer run duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		effectTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_runs_total",
			Help:        "Total number of effect runs",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		effectDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_duration_seconds",
			Help:        "Effect run duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		flushRuns: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_effect_runs",
			Help:        "Number of effects run by one flush",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{1, 2, 5, 10, 25, 50, 100, 250},
		}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of open live sessions",
			ConstLabels: config.ConstLabels,
		}),

		sessionEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "session_events_total",
			Help:        "Total number of events dispatched into live sessions",
			ConstLabels: config.ConstLabels,
		}, []string{"type", "status"}),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ComputedEvaluated implements reactive.Observer.
func (m *Metrics) ComputedEvaluated(_ uint64, _ time.Time, d time.Duration, err error) {
	m.computedTotal.WithLabelValues(status(err)).Inc()
	m.computedDuration.Observe(d.Seconds())
}

// EffectRan implements reactive.Observer.
func (m *Metrics) EffectRan(_ uint64, _ time.Time, d time.Duration, err error) {
	m.effectTotal.WithLabelValues(status(err)).Inc()
	m.effectDuration.Observe(d.Seconds())
}

// FlushCompleted implements reactive.Observer.
func (m *Metrics) FlushCompleted(runs int, _ time.Time, _ time.Duration) {
	m.flushRuns.Observe(float64(runs))
}

// SessionOpened records a new live session.
func (m *Metrics) SessionOpened() {
	m.activeSessions.Inc()
}

// SessionClosed records a closed live session.
func (m *Metrics) SessionClosed() {
	m.activeSessions.Dec()
}

// SessionEvent records an event dispatched into a live session. err is the
// dispatch error, if any.
func (m *Metrics) SessionEvent(typ string, err error) {
	m.sessionEvents.WithLabelValues(typ, status(err)).Inc()
}
