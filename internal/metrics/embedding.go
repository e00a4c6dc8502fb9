package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every exported metric.
const Namespace = "catalograg"

// Embedding call kinds: queries go one at a time, catalog indexing goes in batches.
const (
	EmbedCallSingle = "single"
	EmbedCallBatch  = "batch"
)

// Embedding Prometheus metrics for query and product vectors.
var (
	EmbeddingCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "embedding_calls_total",
			Help:      "Embedding API calls by call kind and outcome",
		},
		[]string{"model", "call", "status"},
	)

	EmbeddingCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "embedding_call_duration_seconds",
			Help:      "Latency of successful embedding API calls",
			Buckets:   []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 15},
		},
		[]string{"model", "call"},
	)

	EmbeddingInputsPerCall = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "embedding_inputs_per_call",
			Help:      "Texts sent in one embedding call",
			Buckets:   []float64{1, 8, 32, 64, 128, 256},
		},
		[]string{"model"},
	)

	EmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "embedding_tokens_total",
			Help:      "Tokens billed by the embedding provider",
		},
		[]string{"model", "call"},
	)

	EmbeddingFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "embedding_failures_total",
			Help:      "Failed embedding calls by reason",
		},
		[]string{"model", "reason"}, // api_error, empty_response, count_mismatch
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "embedding_cache_lookups_total",
			Help:      "Embedding cache lookups for queries and products",
		},
		[]string{"result"}, // hit, miss
	)

	EmbeddingBudgetRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "embedding_budget_remaining_tokens",
			Help:      "Tokens left in the current budget period",
		},
		[]string{"period"}, // daily, monthly
	)
)

// ObserveEmbeddingCall records a successful embedding call.
func ObserveEmbeddingCall(model, call string, inputs, tokens int, took time.Duration) {
	EmbeddingCallsTotal.WithLabelValues(model, call, "success").Inc()
	EmbeddingCallDuration.WithLabelValues(model, call).Observe(took.Seconds())
	EmbeddingInputsPerCall.WithLabelValues(model).Observe(float64(inputs))
	if tokens > 0 {
		EmbeddingTokensTotal.WithLabelValues(model, call).Add(float64(tokens))
	}
}

// EmbeddingCallFailed records a failed embedding call.
func EmbeddingCallFailed(model, call, reason string) {
	EmbeddingCallsTotal.WithLabelValues(model, call, "error").Inc()
	EmbeddingFailuresTotal.WithLabelValues(model, reason).Inc()
}

var embMetricsRegistered bool

// RegisterEmbeddingMetrics registers the embedding collectors. Safe to call more than once.
func RegisterEmbeddingMetrics() {
	if embMetricsRegistered {
		return
	}
	prometheus.MustRegister(
		EmbeddingCallsTotal,
		EmbeddingCallDuration,
		EmbeddingInputsPerCall,
		EmbeddingTokensTotal,
		EmbeddingFailuresTotal,
		EmbeddingCacheTotal,
		EmbeddingBudgetRemaining,
	)
	embMetricsRegistered = true
}
