package metric

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/flatfile/errors"
)

func newCounter(name string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "flatfile",
		Subsystem: "test",
		Name:      name,
		Help:      "test counter",
	})
}

func TestRegistry_RegisterAndUnregister(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.RegisterCounter("stream", "lines_total", newCounter("lines_total")))

	assert.True(t, r.Unregister("stream", "lines_total"))
	assert.False(t, r.Unregister("stream", "lines_total"), "second unregister finds nothing")
}

func TestRegistry_DuplicateRegistration(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.RegisterCounter("stream", "lines_total", newCounter("lines_total")))

	err := r.RegisterCounter("stream", "lines_total", newCounter("lines_total"))
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestRegistry_SameNameDifferentComponent(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.RegisterCounter("stream-a", "lines_total", newCounter("a_lines_total")))
	require.NoError(t, r.RegisterCounter("stream-b", "lines_total", newCounter("b_lines_total")))
}

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry()
	assert.NotNil(t, r.Handler())
	assert.NotNil(t, r.PrometheusRegistry())
}

func TestRegistry_Gauge_Histogram(t *testing.T) {
	r := NewRegistry()

	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "flatfile", Subsystem: "test", Name: "buffered_bytes", Help: "test gauge",
	})
	require.NoError(t, r.RegisterGauge("stream", "buffered_bytes", gauge))

	hist := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "flatfile", Subsystem: "test", Name: "line_length", Help: "test histogram",
	})
	require.NoError(t, r.RegisterHistogram("stream", "line_length", hist))
}
