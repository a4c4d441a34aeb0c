package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics implements Metrics with client_golang
// collectors registered on a caller-provided Registerer.
type PrometheusMetrics struct {
	examples   *prometheus.CounterVec
	durations  *prometheus.HistogramVec
	assertions *prometheus.CounterVec
	runs       prometheus.Counter
	active     prometheus.Gauge
}

// NewPrometheusMetrics creates the collectors and registers them
// on reg. A nil reg registers on the default registry.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		// examples counts finished examples by outcome
		examples: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "specrun_examples_total",
			Help: "Total examples run by status",
		}, []string{"status"}),

		// durations tracks example wall-clock time
		durations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "specrun_example_duration_seconds",
			Help:    "Example duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"status"}),

		assertions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "specrun_assertions_total",
			Help: "Total expectations evaluated by matcher and result",
		}, []string{"matcher", "result"}),

		runs: factory.NewCounter(prometheus.CounterOpts{
			Name: "specrun_runs_total",
			Help: "Total runs started",
		}),

		active: factory.NewGauge(prometheus.GaugeOpts{
			Name: "specrun_active_examples",
			Help: "Examples currently executing",
		}),
	}
}

func (m *PrometheusMetrics) RecordExample(
	status string, duration time.Duration,
) {
	m.examples.WithLabelValues(status).Inc()
	m.durations.WithLabelValues(status).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordAssertion(matcher string, passed bool) {
	result := "failed"
	if passed {
		result = "passed"
	}
	m.assertions.WithLabelValues(matcher, result).Inc()
}

func (m *PrometheusMetrics) IncrementRunTotal() {
	m.runs.Inc()
}

func (m *PrometheusMetrics) SetActiveExamples(count int) {
	m.active.Set(float64(count))
}
