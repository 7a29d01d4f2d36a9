// Package metrics holds the Prometheus collectors exported by prodscout.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "prodscout_stage_duration_seconds",
			Help:    "Duration of pipeline stages in seconds.",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"stage"},
	)
	PipelineRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prodscout_pipeline_runs_total",
			Help: "Total number of pipeline runs, labeled by result.",
		},
		[]string{"result"},
	)
	RateLimitRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "prodscout_ratelimit_retries_total",
			Help: "Total number of retries after rate limit errors.",
		},
	)
	RateLimitExhausted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "prodscout_ratelimit_exhausted_total",
			Help: "Total number of operations that ran out of rate limit retries.",
		},
	)
	DomainThrottleWaits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "prodscout_domain_throttle_waits_total",
			Help: "Total number of requests suspended by the per-domain throttle.",
		},
	)
	FetchRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prodscout_fetch_requests_total",
			Help: "Total number of page fetches, labeled by status code.",
		},
		[]string{"status"},
	)
	LLMRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prodscout_llm_requests_total",
			Help: "Total number of text generation requests, labeled by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(StageDuration)
	prometheus.MustRegister(PipelineRuns)
	prometheus.MustRegister(RateLimitRetries)
	prometheus.MustRegister(RateLimitExhausted)
	prometheus.MustRegister(DomainThrottleWaits)
	prometheus.MustRegister(FetchRequests)
	prometheus.MustRegister(LLMRequests)
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveStage records the duration of one stage execution.
func ObserveStage(stage string, d time.Duration) {
	StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveFetch counts a fetch by HTTP status. Transport failures use status 0.
func ObserveFetch(status int) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	FetchRequests.WithLabelValues(label).Inc()
}
