package backend

import (
	"context"
	"errors"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/mosc/eventadmin/internal/pkg/logger"
	"github.com/mosc/eventadmin/internal/pkg/metrics"
)

// BreakerSettings tunes the circuit breaker around backend calls.
type BreakerSettings struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	MinRequests uint32
	FailureRate float64
}

// DefaultBreakerSettings allows 3 half-open probes, resets counts every
// minute, waits 2 minutes before probing, and trips at 60% failures over at
// least 10 requests.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:        "backend-api",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		MinRequests: 10,
		FailureRate: 0.6,
	}
}

func newBreaker(s BreakerSettings) *gobreaker.CircuitBreaker[*Response] {
	metrics.CircuitBreakerState.WithLabelValues(s.Name).Set(0)

	return gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= s.FailureRate
			if shouldTrip {
				logger.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("Opening backend circuit")
			}
			return shouldTrip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
		IsSuccessful: isBreakerSuccess,
	})
}

// breakerFailureStatus reports whether a response status counts against the
// backend. A 401 only reaches here after the refreshed token was refused too.
func breakerFailureStatus(status int) bool {
	return status >= http.StatusInternalServerError ||
		status == http.StatusTooManyRequests ||
		status == http.StatusUnauthorized
}

// isBreakerSuccess decides which outcomes count against the backend. Client
// errors and caller cancellations say nothing about backend health.
func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return !breakerFailureStatus(se.Status)
	}
	return false
}

// execute runs fn through the breaker and records the outcome.
func (c *Client) execute(fn func() (*Response, error)) (*Response, error) {
	resp, err := c.cb.Execute(fn)
	name := c.breakerName

	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(name, "success").Inc()
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(name, "rejected").Inc()
		logger.Warn().Err(err).Msg("Backend request rejected by circuit breaker")
		return nil, errBreakerOpen(err)
	case isBreakerSuccess(err):
		metrics.CircuitBreakerRequests.WithLabelValues(name, "success").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(name, "failure").Inc()
	}
	return resp, err
}

// BreakerState exposes the breaker state for health reporting.
func (c *Client) BreakerState() string {
	return c.cb.State().String()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
