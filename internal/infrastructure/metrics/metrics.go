package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Conte777/mediaflow/internal/domain/download/entities"
	"github.com/Conte777/mediaflow/internal/domain/media"
)

// Metrics holds all Prometheus metrics for the downloader. Metrics live in a
// private registry so several instances can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	// Item metrics
	ItemsSaved   *prometheus.CounterVec
	ItemsSkipped *prometheus.CounterVec
	ItemsFailed  *prometheus.CounterVec
	BytesSaved   *prometheus.CounterVec

	// Job metrics
	JobsFinished *prometheus.CounterVec
	JobDuration  prometheus.Histogram
}

// NewMetrics creates a new Metrics instance with its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		ItemsSaved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mediaflow_items_saved_total",
				Help: "Total number of media files saved",
			},
			[]string{"kind"},
		),
		ItemsSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mediaflow_items_skipped_total",
				Help: "Total number of media files skipped because they already exist",
			},
			[]string{"kind"},
		),
		ItemsFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mediaflow_items_failed_total",
				Help: "Total number of media transfers that failed",
			},
			[]string{"kind"},
		),
		BytesSaved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mediaflow_bytes_saved_total",
				Help: "Total number of bytes written to the download root",
			},
			[]string{"kind"},
		),

		JobsFinished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mediaflow_jobs_finished_total",
				Help: "Total number of download jobs by terminal state",
			},
			[]string{"state"},
		),
		JobDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mediaflow_job_duration_seconds",
			Help:    "Duration of download jobs in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 300, 900, 1800, 3600},
		}),
	}
}

// Registry returns the registry the metrics are registered in
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ItemSaved records a saved file
func (m *Metrics) ItemSaved(kind media.Kind, bytes int64) {
	m.ItemsSaved.WithLabelValues(string(kind)).Inc()
	// Only add positive values to prevent counter from going backwards
	if bytes > 0 {
		m.BytesSaved.WithLabelValues(string(kind)).Add(float64(bytes))
	}
}

// ItemSkipped records a file skipped as already present
func (m *Metrics) ItemSkipped(kind media.Kind) {
	m.ItemsSkipped.WithLabelValues(string(kind)).Inc()
}

// ItemFailed records a failed transfer
func (m *Metrics) ItemFailed(kind media.Kind) {
	m.ItemsFailed.WithLabelValues(string(kind)).Inc()
}

// JobFinished records a job reaching a terminal state
func (m *Metrics) JobFinished(state entities.State, duration time.Duration) {
	m.JobsFinished.WithLabelValues(string(state)).Inc()
	m.JobDuration.Observe(duration.Seconds())
}
