package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tubot_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tubot_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	// Completion metrics
	CompletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tubot_completions_total",
			Help: "Completion requests handled, by provider and outcome",
		},
		[]string{"provider", "outcome"}, // outcome: "ok", "invalid", "error"
	)

	CompletionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tubot_completion_duration_seconds",
			Help:    "Time spent waiting on the language model provider",
			Buckets: []float64{.1, .25, .5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"provider"},
	)

	// Business metrics
	BotsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tubot_bots_created_total",
			Help: "Total bots created",
		},
	)

	BotLimitRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tubot_bot_limit_rejections_total",
			Help: "Bot creations rejected because the roster was full",
		},
	)

	AuthEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tubot_auth_events_total",
			Help: "Identity operations, by operation and outcome",
		},
		[]string{"op", "outcome"},
	)

	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tubot_rate_limit_hits_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"endpoint"},
	)
)
