package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

type stubStatus struct{ state string }

func (s stubStatus) BreakerState() string { return s.state }
func (s stubStatus) BaseURL() string      { return "http://backend" }

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func healthCode(sc *SystemController) (int, string) {
	r := gin.New()
	r.GET("/health", sc.Health)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	return w.Code, w.Body.String()
}

func TestHealth(t *testing.T) {
	code, body := healthCode(NewSystemController(stubStatus{"closed"}, nil))
	if code != http.StatusOK || !strings.Contains(body, `"kind":"memory"`) {
		t.Errorf("memory store: %d %s", code, body)
	}

	code, body = healthCode(NewSystemController(stubStatus{"closed"}, stubPinger{}))
	if code != http.StatusOK || !strings.Contains(body, `"kind":"postgres"`) {
		t.Errorf("postgres: %d %s", code, body)
	}

	code, body = healthCode(NewSystemController(stubStatus{"closed"}, stubPinger{errors.New("connection refused")}))
	if code != http.StatusServiceUnavailable || !strings.Contains(body, "degraded") {
		t.Errorf("db down: %d %s", code, body)
	}

	code, _ = healthCode(NewSystemController(stubStatus{"open"}, nil))
	if code != http.StatusServiceUnavailable {
		t.Errorf("breaker open: status = %d, want 503", code)
	}
}
