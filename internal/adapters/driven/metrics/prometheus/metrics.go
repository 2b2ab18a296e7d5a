// Package prometheus records pipeline activity as Prometheus metrics.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quizbolt/quizbolt/internal/core/domain"
	"github.com/quizbolt/quizbolt/internal/core/ports/driven"
)

// Ensure Metrics implements the interface.
var _ driven.Metrics = (*Metrics)(nil)

// Metrics holds the QuizBolt collectors on a private registry.
//
// Metrics:
//   - quizbolt_documents_ingested_total{kind} - Count of ingested documents
//   - quizbolt_chunks_stored_total{kind} - Count of chunks written at ingestion
//   - quizbolt_chunks_retrieved - Histogram of chunks returned per retrieval
//   - quizbolt_generation_transitions_total{task,state} - Generation state changes
//   - quizbolt_generation_duration_seconds{task} - Provider round trip per task
type Metrics struct {
	registry *prometheus.Registry

	documentsIngested *prometheus.CounterVec
	chunksStored      *prometheus.CounterVec
	chunksRetrieved   prometheus.Histogram
	transitions       *prometheus.CounterVec
	duration          *prometheus.HistogramVec
}

// NewMetrics creates and registers the collectors, plus the Go runtime and
// process collectors, on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		documentsIngested: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quizbolt_documents_ingested_total",
				Help: "Total number of documents ingested",
			},
			[]string{"kind"},
		),
		chunksStored: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quizbolt_chunks_stored_total",
				Help: "Total number of chunks stored at ingestion",
			},
			[]string{"kind"},
		),
		chunksRetrieved: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "quizbolt_chunks_retrieved",
				Help:    "Number of chunks returned per retrieval",
				Buckets: []float64{0, 1, 2, 4, 8, 16, 32},
			},
		),
		transitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quizbolt_generation_transitions_total",
				Help: "Total number of generation state transitions",
			},
			[]string{"task", "state"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quizbolt_generation_duration_seconds",
				Help:    "Duration of LLM generation in seconds",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
			},
			[]string{"task"},
		),
	}
}

// DocumentIngested counts a successful ingestion and its chunks.
func (m *Metrics) DocumentIngested(kind domain.SourceKind, chunks int) {
	m.documentsIngested.WithLabelValues(kind.String()).Inc()
	m.chunksStored.WithLabelValues(kind.String()).Add(float64(chunks))
}

// ChunksRetrieved records the size of a retrieval result.
func (m *Metrics) ChunksRetrieved(n int) {
	m.chunksRetrieved.Observe(float64(n))
}

// GenerationTransition counts a generation state change.
func (m *Metrics) GenerationTransition(task string, state domain.GenerationState) {
	m.transitions.WithLabelValues(task, string(state)).Inc()
}

// GenerationDuration records the provider round trip for a task.
func (m *Metrics) GenerationDuration(task string, d time.Duration) {
	m.duration.WithLabelValues(task).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
