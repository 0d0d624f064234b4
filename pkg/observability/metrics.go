// Package observability provides Prometheus metrics for the analytics engine.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the transcript analytics engine.
type Metrics struct {
	// Pipeline metrics
	TranscriptsProcessed *prometheus.CounterVec
	TransformSeconds     prometheus.Histogram

	// Scoring metrics
	MessagesScored   *prometheus.CounterVec
	ModelCallSeconds prometheus.Histogram
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter

	// Summarization metrics
	SummaryCallSeconds prometheus.Histogram
	SummaryFallbacks   prometheus.Counter
}

// DefaultMetrics creates metrics registered on the default registerer.
func DefaultMetrics() *Metrics {
	return NewMetrics(prometheus.DefaultRegisterer)
}

// NewMetrics creates a new set of engine metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TranscriptsProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conversa_transcripts_processed_total",
				Help: "Total transcripts processed by outcome",
			},
			[]string{"status"},
		),
		TransformSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "conversa_transform_seconds",
				Help:    "Latency of dataset transform passes",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			},
		),
		MessagesScored: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conversa_messages_scored_total",
				Help: "Total messages scored by label and degradation",
			},
			[]string{"label", "degraded"},
		),
		ModelCallSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "conversa_model_call_seconds",
				Help:    "Latency of sentiment model calls",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
		),
		CacheHits: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "conversa_scoring_cache_hits_total",
				Help: "Model-output cache hits",
			},
		),
		CacheMisses: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "conversa_scoring_cache_misses_total",
				Help: "Model-output cache misses",
			},
		),
		SummaryCallSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "conversa_summary_call_seconds",
				Help:    "Latency of summarization calls",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		SummaryFallbacks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "conversa_summary_fallbacks_total",
				Help: "Analyze calls that fell back to the unavailable-summary text",
			},
		),
	}
}
