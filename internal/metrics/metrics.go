package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "securemov_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "securemov_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	// Chat metrics
	MessagesPosted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "securemov_messages_posted_total",
			Help: "Total chat messages stored",
		},
		[]string{"author_type"}, // "user" or "assistant"
	)

	FeedSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "securemov_feed_subscribers",
			Help: "Active change-feed listeners",
		},
	)

	// Assistant metrics
	AssistantTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "securemov_assistant_turns_total",
			Help: "Assistant turns by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	ModelLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "securemov_model_latency_seconds",
			Help:    "Language model call latency",
			Buckets: []float64{.25, .5, 1, 2, 5, 10, 20, 40, 60, 120},
		},
	)

	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "securemov_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"endpoint"},
	)

	// Infrastructure metrics
	PostgresLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "securemov_postgres_latency_seconds",
			Help:    "PostgreSQL query latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25},
		},
	)
)
