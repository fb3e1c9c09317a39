package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/app/services"
)

type stubSettings struct {
	services.WhatsAppSettingsService

	tested *dto.TwilioCredentials
}

func (s *stubSettings) TestConnection(_ context.Context, creds dto.TwilioCredentials) dto.ConnectionTestResult {
	s.tested = &creds
	return dto.ConnectionTestResult{Success: true, Message: "Connected"}
}

func settingsRouter(svc services.WhatsAppSettingsService) *gin.Engine {
	sc := NewWhatsAppSettingsController(svc)
	r := gin.New()
	r.POST("/whatsapp/settings/test-connection", sc.TestConnection)
	r.PUT("/whatsapp/settings/credentials", sc.SaveCredentials)
	return r
}

func TestConnectionTestRejectsMalformedCredentials(t *testing.T) {
	svc := &stubSettings{}
	body := `{"accountSid":"SK123","authToken":"0123456789abcdef0123456789abcdef","whatsappFrom":"whatsapp:+14155552671"}`
	w := httptest.NewRecorder()
	settingsRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/whatsapp/settings/test-connection", strings.NewReader(body)))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d %s", w.Code, w.Body.String())
	}
	var resp dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error.Field != "accountSid" || resp.Error.Message != "Invalid Account SID format" {
		t.Errorf("error = %+v", resp.Error)
	}
	if svc.tested != nil {
		t.Error("invalid credentials must not reach the backend")
	}
}

func TestConnectionTestPassesCredentials(t *testing.T) {
	svc := &stubSettings{}
	body := `{"accountSid":"AC0123456789abcdef0123456789abcdef","authToken":"0123456789abcdef0123456789abcdef","whatsappFrom":"whatsapp:+14155552671"}`
	w := httptest.NewRecorder()
	settingsRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/whatsapp/settings/test-connection", strings.NewReader(body)))

	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"Connected"`) {
		t.Fatalf("status = %d %s", w.Code, w.Body.String())
	}
	if svc.tested == nil || svc.tested.WhatsAppFrom != "whatsapp:+14155552671" {
		t.Errorf("tested = %+v", svc.tested)
	}
}
