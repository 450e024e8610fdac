// Package metrics exports impulse runtime activity as Prometheus metrics.
//
// Metrics collected (with the default namespace):
//   - impulse_nodes_created_total: impulses, transmitting impulses and
//     emitters created, by kind
//   - impulse_writes_total: writes by result (changed, unchanged)
//   - impulse_flushes_total: batches that flushed
//   - impulse_emitters_notified_total: emitter notifications
//   - impulse_listeners_notified_total: listener calls
//   - impulse_flush_duration_seconds: histogram of batch durations
//   - impulse_guard_violations_total: illegal calls by operation and context
//
// Example:
//
//	obs := metrics.New(metrics.WithNamespace("myapp"))
//	rt := impulse.NewRuntime(impulse.WithObserver(obs))
//
//	http.Handle("/metrics", promhttp.Handler())
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/impulse/pkg/impulse"
)

// Config configures the Prometheus observer.
type Config struct {
	// Namespace is the metrics namespace (default: "impulse").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for flush duration.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the Prometheus observer.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the flush duration histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// DefaultBuckets covers flushes from 10µs to 1s.
var DefaultBuckets = []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1, .5, 1}

func defaultConfig() Config {
	return Config{
		Namespace: "impulse",
		Buckets:   DefaultBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Observer is an impulse.Observer backed by Prometheus collectors. Its
// methods are safe to call from the runtime goroutine while the registry is
// scraped from another.
type Observer struct {
	created       *prometheus.CounterVec
	writes        *prometheus.CounterVec
	flushes       prometheus.Counter
	emitters      prometheus.Counter
	listeners     prometheus.Counter
	flushDuration prometheus.Histogram
	violations    *prometheus.CounterVec
}

var _ impulse.Observer = (*Observer)(nil)

// New registers the impulse metrics and returns the observer feeding them.
// It panics if metrics with the same names are already registered in the
// configured registry.
func New(opts ...Option) *Observer {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Observer{
		created: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "nodes_created_total",
			Help:        "Total number of reactive nodes created",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		writes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "writes_total",
			Help:        "Total number of impulse writes by result",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),

		flushes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flushes_total",
			Help:        "Total number of flushed batches",
			ConstLabels: config.ConstLabels,
		}),

		emitters: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "emitters_notified_total",
			Help:        "Total number of emitter notifications",
			ConstLabels: config.ConstLabels,
		}),

		listeners: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "listeners_notified_total",
			Help:        "Total number of listener calls",
			ConstLabels: config.ConstLabels,
		}),

		flushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_duration_seconds",
			Help:        "Batch duration in seconds, work and flush included",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		violations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "guard_violations_total",
			Help:        "Total number of illegal calls inside read-only contexts",
			ConstLabels: config.ConstLabels,
		}, []string{"op", "context"}),
	}
}

// OnCreate implements impulse.Observer.
func (o *Observer) OnCreate(kind impulse.Kind) {
	o.created.WithLabelValues(kind.String()).Inc()
}

// OnWrite implements impulse.Observer.
func (o *Observer) OnWrite(changed bool) {
	result := "unchanged"
	if changed {
		result = "changed"
	}
	o.writes.WithLabelValues(result).Inc()
}

// OnFlush implements impulse.Observer.
func (o *Observer) OnFlush(stats impulse.FlushStats) {
	o.flushes.Inc()
	o.emitters.Add(float64(stats.Emitters))
	o.listeners.Add(float64(stats.Listeners))
	o.flushDuration.Observe(stats.Duration.Seconds())
}

// OnViolation implements impulse.Observer.
func (o *Observer) OnViolation(v *impulse.Violation) {
	o.violations.WithLabelValues(v.Op.String(), v.Context.String()).Inc()
}
