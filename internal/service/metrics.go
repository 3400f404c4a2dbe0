package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	aiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "persona_ai_requests_total",
			Help: "Total number of requests to the AI backend.",
		},
		[]string{"model", "status"},
	)
	aiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "persona_ai_request_duration_seconds",
			Help:    "Histogram of AI backend request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)
	aiPromptTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "persona_ai_prompt_tokens",
			Help:    "Histogram of prompt token counts.",
			Buckets: prometheus.LinearBuckets(250, 250, 20), // 250 .. 5000
		},
		[]string{"model"},
	)
	aiCompletionTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "persona_ai_completion_tokens",
			Help:    "Histogram of completion token counts.",
			Buckets: prometheus.LinearBuckets(25, 25, 20), // 25 .. 500
		},
		[]string{"model"},
	)
)

func observeFailure(model, status string) {
	aiRequestsTotal.With(prometheus.Labels{"model": model, "status": status}).Inc()
}

func observeSuccess(model string, duration time.Duration, usage UsageInfo) {
	aiRequestsTotal.With(prometheus.Labels{"model": model, "status": "success"}).Inc()
	aiRequestDuration.With(prometheus.Labels{"model": model}).Observe(duration.Seconds())
	if usage.TotalTokens > 0 {
		aiPromptTokens.With(prometheus.Labels{"model": model}).Observe(float64(usage.PromptTokens))
		aiCompletionTokens.With(prometheus.Labels{"model": model}).Observe(float64(usage.CompletionTokens))
	}
}
