package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline Prometheus metrics.
var (
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "searches_total",
			Help:      "Pipeline searches by outcome",
		},
		[]string{"outcome"}, // "found" / "empty" / "error" / "invalid"
	)

	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"stage"}, // "optimize" / "retrieve" / "generate"
	)

	RetrievalFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "retrieval_fallbacks_total",
			Help:      "Searches retried without the category filter",
		},
	)

	StageFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "stage_fallbacks_total",
			Help:      "Times a stage answered with its deterministic fallback",
		},
		[]string{"stage"}, // "optimize" / "generate"
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "active_sessions",
			Help:      "Session contexts held in memory after the last sweep",
		},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers Prometheus pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(StageDuration)
	prometheus.MustRegister(RetrievalFallbacksTotal)
	prometheus.MustRegister(StageFallbacksTotal)
	prometheus.MustRegister(ActiveSessions)
	pipelineMetricsRegistered = true
}

// RegisterAll registers every application metric.
func RegisterAll() {
	RegisterEmbeddingMetrics()
	RegisterLLMMetrics()
	RegisterPipelineMetrics()
	RegisterHTTPMetrics()
}
