package ai

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	aiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "textgame_ai_requests_total",
			Help: "Total number of structured completion requests.",
		},
		[]string{"model", "function", "status"},
	)
	aiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "textgame_ai_request_duration_seconds",
			Help:    "Histogram of completion request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model", "function"},
	)
	aiPromptTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "textgame_ai_prompt_tokens",
			Help:    "Histogram of prompt token counts.",
			Buckets: prometheus.LinearBuckets(250, 250, 20),
		},
		[]string{"model", "function"},
	)
	aiCompletionTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "textgame_ai_completion_tokens",
			Help:    "Histogram of completion token counts.",
			Buckets: prometheus.LinearBuckets(100, 100, 20),
		},
		[]string{"model", "function"},
	)
)

// observeCall пишет метрики одного вызова модели.
func observeCall(model, function, status string, res Result) {
	aiRequestsTotal.With(prometheus.Labels{"model": model, "function": function, "status": status}).Inc()
	aiRequestDuration.With(prometheus.Labels{"model": model, "function": function}).Observe(float64(res.LatencyMS) / 1000.0)
	if res.PromptTokens > 0 || res.CompletionTokens > 0 {
		aiPromptTokens.With(prometheus.Labels{"model": model, "function": function}).Observe(float64(res.PromptTokens))
		aiCompletionTokens.With(prometheus.Labels{"model": model, "function": function}).Observe(float64(res.CompletionTokens))
	}
}
