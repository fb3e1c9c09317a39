package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// hasSeries reports whether the default registry holds a series of family
// carrying every given label value.
func hasSeries(t *testing.T, family string, labels map[string]string) bool {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != family {
			continue
		}
		for _, m := range mf.GetMetric() {
			matched := 0
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want == lp.GetValue() {
					matched++
				}
			}
			if matched == len(labels) {
				return true
			}
		}
	}
	return false
}

func TestRecordBackendRequest(t *testing.T) {
	tests := []struct {
		name   string
		status int
		label  string
	}{
		{"answered", 200, "200"},
		{"server error", 502, "502"},
		{"no response", 0, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordBackendRequest("GET", "metrics-test", tt.status, 5*time.Millisecond)
			if !hasSeries(t, "eventadmin_backend_request_duration_seconds", map[string]string{
				"resource": "metrics-test",
				"status":   tt.label,
			}) {
				t.Errorf("missing series with status %q", tt.label)
			}
		})
	}
}

func TestRecordHTTPRequestUnmatchedRoute(t *testing.T) {
	RecordHTTPRequest("GET", "", 404, time.Millisecond)
	if !hasSeries(t, "eventadmin_http_request_duration_seconds", map[string]string{"route": "unmatched", "status": "404"}) {
		t.Error("requests without a route are labelled unmatched")
	}
}

func TestCircuitBreakerStateGauge(t *testing.T) {
	CircuitBreakerState.WithLabelValues("metrics-test").Set(2)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("metrics-test")); got != 2 {
		t.Errorf("circuit_breaker_state = %v, want 2", got)
	}
}

func TestCampaignsSubmittedByMode(t *testing.T) {
	before := testutil.ToFloat64(CampaignsSubmitted.WithLabelValues("scheduled"))
	CampaignsSubmitted.WithLabelValues("scheduled").Inc()
	if got := testutil.ToFloat64(CampaignsSubmitted.WithLabelValues("scheduled")) - before; got != 1 {
		t.Errorf("scheduled delta = %v, want 1", got)
	}
}
