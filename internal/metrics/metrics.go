package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Redis Operations Metrics
var (
	// RedisOpsTotal tracks total Redis operations by operation type and status
	RedisOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_operations_total",
			Help: "Total Redis operations by operation and status",
		},
		[]string{"operation", "status"},
	)

	// RedisOpDuration tracks Redis operation latency in seconds
	RedisOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Redis operation duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// RedisConnectionErrors tracks Redis connection errors
	RedisConnectionErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "redis_connection_errors_total",
			Help: "Total Redis connection errors",
		},
	)

	// CircuitBreakerStateChanges tracks circuit breaker state transitions
	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_changes_total",
			Help: "Circuit breaker state transitions by component and new state",
		},
		[]string{"component", "state"},
	)

	// CircuitBreakerState tracks current circuit breaker state (0=closed, 1=half-open, 2=open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"component"},
	)
)

// Discord Metrics
var (
	// CommandsTotal tracks handled commands by name, invocation surface and outcome
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commands_total",
			Help: "Total commands handled by command, source (slash/prefix/context) and result",
		},
		[]string{"command", "source", "result"},
	)

	// CommandDuration tracks command handler latency in seconds
	CommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "command_duration_seconds",
			Help:    "Command handler duration in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"command"},
	)

	// MessagesClassified tracks incoming chat messages by classification
	MessagesClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_classified_total",
			Help: "Total chat messages by classification",
		},
		[]string{"kind"},
	)

	// CommandsRateLimited tracks commands dropped by the per-user limiter
	CommandsRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "commands_rate_limited_total",
			Help: "Total commands rejected by the per-user rate limiter",
		},
	)

	// HandlerPanics tracks recovered panics in Discord event handlers
	HandlerPanics = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "handler_panics_total",
			Help: "Total recovered panics in Discord event handlers",
		},
	)
)

// External API Metrics
var (
	// ExternalRequestsTotal tracks outbound API calls by service and result
	ExternalRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "external_requests_total",
			Help: "Total outbound API requests by service and result",
		},
		[]string{"service", "result"},
	)

	// ExternalRequestDuration tracks outbound API latency in seconds
	ExternalRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "external_request_duration_seconds",
			Help:    "Outbound API request duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"service"},
	)

	// ExternalRequestsCoalesced tracks GETs served by an in-flight identical request
	ExternalRequestsCoalesced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "external_requests_coalesced_total",
			Help: "Total outbound GET requests deduplicated via singleflight",
		},
		[]string{"service"},
	)
)

// Feature Metrics
var (
	// ThanksTotal tracks reputation points awarded
	ThanksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thanks_total",
			Help: "Total thank attempts by result (awarded/cooldown/rejected)",
		},
		[]string{"result"},
	)

	// MathRendersTotal tracks math render attempts by result
	MathRendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "math_renders_total",
			Help: "Total math renders by result (success/compile_error/too_big/error)",
		},
		[]string{"result"},
	)

	// MathRenderDuration tracks typst compile + scale latency in seconds
	MathRenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "math_render_duration_seconds",
			Help:    "Math render duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
		},
	)

	// EditWatchersActive tracks messages currently watched for edits
	EditWatchersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "math_edit_watchers_active",
			Help: "Number of rendered messages currently watched for edits",
		},
	)

	// AutoTranslations tracks automatic chat translations by outcome
	AutoTranslations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auto_translations_total",
			Help: "Total automatic translations by result (sent/too_similar/error)",
		},
		[]string{"result"},
	)
)

// Build Information Metrics
var (
	// BuildInfo is a gauge that always returns 1, with build metadata as labels
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "build_info",
			Help: "Build information with version, commit, build_time, and go_version labels (value is always 1)",
		},
		[]string{"version", "commit", "build_time", "go_version"},
	)
)
