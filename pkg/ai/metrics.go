package ai

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
	statusEmpty   = "error_empty_response"
)

var (
	aiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parenting_ai_requests_total",
			Help: "Total number of requests to the AI provider.",
		},
		[]string{"provider", "model", "status"},
	)
	aiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "parenting_ai_request_duration_seconds",
			Help:    "Histogram of AI provider request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "model"},
	)
	aiPromptTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "parenting_ai_prompt_tokens",
			Help:    "Histogram of prompt token counts.",
			Buckets: prometheus.LinearBuckets(100, 100, 10), // 100, 200, ..., 1000
		},
		[]string{"provider", "model"},
	)
	aiCompletionTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "parenting_ai_completion_tokens",
			Help:    "Histogram of completion token counts.",
			Buckets: prometheus.LinearBuckets(25, 25, 20), // 25, 50, ..., 500
		},
		[]string{"provider", "model"},
	)
	aiRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parenting_ai_retries_total",
			Help: "Total number of retried AI requests.",
		},
		[]string{"reason"},
	)
)

func observeRequest(provider, model, status string, d time.Duration) {
	aiRequestsTotal.With(prometheus.Labels{"provider": provider, "model": model, "status": status}).Inc()
	if status == statusSuccess {
		aiRequestDuration.With(prometheus.Labels{"provider": provider, "model": model}).Observe(d.Seconds())
	}
}

func observeUsage(provider, model string, u Usage) {
	if u.TotalTokens <= 0 {
		return
	}
	aiPromptTokens.With(prometheus.Labels{"provider": provider, "model": model}).Observe(float64(u.PromptTokens))
	aiCompletionTokens.With(prometheus.Labels{"provider": provider, "model": model}).Observe(float64(u.CompletionTokens))
}
