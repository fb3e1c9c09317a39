// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP surface
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventadmin_http_request_duration_seconds",
			Help:    "Duration of HTTP requests served by the admin service",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Backend API
	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventadmin_backend_request_duration_seconds",
			Help:    "Duration of requests to the backend REST API",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "resource", "status"},
	)

	BackendTokenRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventadmin_backend_token_refreshes_total",
			Help: "Backend JWT fetches by reason",
		},
		[]string{"reason"}, // "expired", "unauthorized"
	)

	// Circuit breaker
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Poll scheduler
	PollSchedulerRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventadmin_poll_scheduler_runs_total",
			Help: "Number of poll scheduler passes",
		},
	)

	PollTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventadmin_poll_transitions_total",
			Help: "Poll activations and deactivations by outcome",
		},
		[]string{"transition", "result"},
	)

	// WhatsApp campaigns
	CampaignsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventadmin_campaigns_submitted_total",
			Help: "Bulk WhatsApp campaigns handed to the backend",
		},
		[]string{"mode"}, // "now", "scheduled"
	)

	CampaignRecipients = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventadmin_campaign_recipients_total",
			Help: "Recipients across all submitted campaigns",
		},
	)

	ActiveCampaignMonitors = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventadmin_campaign_monitors_active",
			Help: "Campaigns whose progress is currently being polled",
		},
	)

	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventadmin_websocket_connections",
			Help: "Open campaign progress websocket connections",
		},
	)
)

// RecordBackendRequest observes one backend call. A zero status means the
// request never got a response.
func RecordBackendRequest(method, resource string, status int, duration time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	BackendRequestDuration.WithLabelValues(method, resource, label).Observe(duration.Seconds())
}

// RecordHTTPRequest observes one served request.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}
