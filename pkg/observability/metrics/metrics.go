// Package metrics exposes Prometheus instrumentation for the generation
// pipelines, the completion client, and the offline cache.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GenerationAttempts tracks question generation attempts by outcome.
	// Outcomes: success, parse_error, structure_invalid, duplicate,
	// hallucination, provider_error, exhausted.
	GenerationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "why_generation_attempts_total",
			Help: "The total number of question generation attempts by outcome",
		},
		[]string{"outcome"},
	)

	// CompletionRequests tracks calls issued to the completion provider.
	CompletionRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "why_completion_requests_total",
			Help: "The total number of completion provider calls by status",
		},
		[]string{"status"},
	)

	// CompletionRetries tracks provider retries by classification.
	CompletionRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "why_completion_retries_total",
			Help: "The total number of completion retries by error class",
		},
		[]string{"class"},
	)

	// CompletionLatency observes end-to-end provider call latency in seconds.
	CompletionLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "why_completion_latency_seconds",
			Help:    "Latency of completion provider calls",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	// CacheOperations tracks offline cache reads and writes.
	// Operations: hit, miss, add, evict, expire.
	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "why_offline_cache_operations_total",
			Help: "The total number of offline cache operations by kind",
		},
		[]string{"operation"},
	)

	// OfflineFallbacks counts requests served from the offline path.
	OfflineFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "why_offline_fallbacks_total",
			Help: "The total number of requests served offline by source",
		},
		[]string{"source"}, // cached | rule_based
	)

	// HallucinationChecks counts hallucination check outcomes.
	HallucinationChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "why_hallucination_checks_total",
			Help: "The total number of hallucination checks by outcome",
		},
		[]string{"outcome"}, // accepted | rejected | unavailable
	)
)

// RecordAttempt records a single generation attempt outcome.
func RecordAttempt(outcome string) {
	GenerationAttempts.WithLabelValues(outcome).Inc()
}

// RecordCacheOp records an offline cache operation.
func RecordCacheOp(op string) {
	CacheOperations.WithLabelValues(op).Inc()
}
