package stream

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/flatfile/metric"
)

// Metrics holds Prometheus metrics for a streaming reader
type Metrics struct {
	linesProcessed prometheus.Counter
	recordsEmitted prometheus.Counter
	fieldsNulled   prometheus.Counter
	bytesRead      prometheus.Counter
	lineLength     prometheus.Histogram
}

// newMetrics creates and registers reader metrics. A nil registry returns
// nil, which disables metrics throughout the reader.
func newMetrics(registry *metric.Registry, name string) *Metrics {
	if registry == nil {
		return nil
	}

	metrics := &Metrics{
		linesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "flatfile",
			Subsystem:   "stream",
			Name:        "lines_processed_total",
			Help:        "Total non-blank data lines processed",
			ConstLabels: prometheus.Labels{"reader": name},
		}),
		recordsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "flatfile",
			Subsystem:   "stream",
			Name:        "records_emitted_total",
			Help:        "Total records yielded to the consumer",
			ConstLabels: prometheus.Labels{"reader": name},
		}),
		fieldsNulled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "flatfile",
			Subsystem:   "stream",
			Name:        "fields_nulled_total",
			Help:        "Fields silently set to nil after a failed validation or coercion",
			ConstLabels: prometheus.Labels{"reader": name},
		}),
		bytesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "flatfile",
			Subsystem:   "stream",
			Name:        "bytes_read_total",
			Help:        "Total bytes consumed from the source",
			ConstLabels: prometheus.Labels{"reader": name},
		}),
		lineLength: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "flatfile",
			Subsystem:   "stream",
			Name:        "line_length_bytes",
			Help:        "Distribution of processed line lengths",
			ConstLabels: prometheus.Labels{"reader": name},
			Buckets:     []float64{16, 64, 256, 1024, 4096, 16384},
		}),
	}

	registry.RegisterCounter(name, "lines_processed", metrics.linesProcessed)
	registry.RegisterCounter(name, "records_emitted", metrics.recordsEmitted)
	registry.RegisterCounter(name, "fields_nulled", metrics.fieldsNulled)
	registry.RegisterCounter(name, "bytes_read", metrics.bytesRead)
	registry.RegisterHistogram(name, "line_length", metrics.lineLength)

	return metrics
}
