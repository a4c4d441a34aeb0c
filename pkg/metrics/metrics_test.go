package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImplementations(t *testing.T) {
	var _ Metrics = &PrometheusMetrics{}
	var _ Metrics = NoopMetrics{}
}

func TestPrometheusMetrics_RecordExample(t *testing.T) {
	m := NewPrometheusMetrics(prometheus.NewRegistry())
	m.RecordExample("passed", 2*time.Second)
	m.RecordExample("passed", 3*time.Second)
	m.RecordExample("failed", time.Second)

	assert.Equal(t, 2.0,
		testutil.ToFloat64(m.examples.WithLabelValues("passed")))
	assert.Equal(t, 1.0,
		testutil.ToFloat64(m.examples.WithLabelValues("failed")))
	assert.Equal(t, 0.0,
		testutil.ToFloat64(m.examples.WithLabelValues("error")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.durations))
}

func TestPrometheusMetrics_RecordAssertion(t *testing.T) {
	m := NewPrometheusMetrics(prometheus.NewRegistry())
	m.RecordAssertion("equal 3", true)
	m.RecordAssertion("equal 3", false)
	m.RecordAssertion("equal 3", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.assertions.WithLabelValues("equal 3", "passed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(
		m.assertions.WithLabelValues("equal 3", "failed")))
}

func TestPrometheusMetrics_RunsAndActive(t *testing.T) {
	m := NewPrometheusMetrics(prometheus.NewRegistry())
	m.IncrementRunTotal()
	m.IncrementRunTotal()
	m.SetActiveExamples(5)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.runs))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.active))
}

func TestPrometheusMetrics_RegistersOnRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg)
	m.IncrementRunTotal()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "specrun_runs_total")
	assert.Contains(t, names, "specrun_active_examples")
}

func TestPrometheusMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheusMetrics(reg)

	assert.Panics(t, func() { NewPrometheusMetrics(reg) })
}

func TestNoopMetrics(t *testing.T) {
	m := NoopMetrics{}
	m.RecordExample("passed", time.Second)
	m.RecordAssertion("eq", true)
	m.IncrementRunTotal()
	m.SetActiveExamples(0)
}
