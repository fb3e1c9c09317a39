package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/pkg/apperrors"
)

func fixedSettings(client Backend, now time.Time) *whatsAppSettingsServiceImpl {
	return &whatsAppSettingsServiceImpl{api: client, now: func() time.Time { return now }}
}

var testCreds = dto.TwilioCredentials{
	AccountSID:   "AC0123456789abcdef0123456789abcdef",
	AuthToken:    "0123456789abcdef0123456789abcdef",
	WhatsAppFrom: "whatsapp:+14155552671",
}

func TestSettingsMasksAuthToken(t *testing.T) {
	api, client := newFakeAPI(t)
	creds := testCreds
	api.reply(http.MethodGet, "/api/tenant-settings", http.StatusOK, []dto.TenantSettings{{
		TenantID:         testTenant,
		WhatsAppSettings: &dto.WhatsAppSettings{IsEnabled: true, TwilioCredentials: &creds},
	}})

	got, err := NewWhatsAppSettingsService(client).Settings(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if tok := got.WhatsAppSettings.TwilioCredentials.AuthToken; tok != "****************************cdef" {
		t.Errorf("auth token = %q", tok)
	}
	if q := api.requests(http.MethodGet, "/api/tenant-settings")[0].Query.Get("tenantId.equals"); q != testTenant {
		t.Errorf("tenant filter = %q", q)
	}
}

func TestSettingsMissingTenantRow(t *testing.T) {
	api, client := newFakeAPI(t)
	api.reply(http.MethodGet, "/api/tenant-settings", http.StatusOK, []dto.TenantSettings{})

	_, err := NewWhatsAppSettingsService(client).Settings(context.Background())
	if !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestSaveCredentialsEnablesIntegration(t *testing.T) {
	api, client := newFakeAPI(t)
	api.reply(http.MethodPatch, "/api/tenant-settings", http.StatusOK, dto.TenantSettings{TenantID: testTenant})
	now := time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC)

	if _, err := fixedSettings(client, now).SaveCredentials(context.Background(), testCreds); err != nil {
		t.Fatal(err)
	}
	req := api.requests(http.MethodPatch, "/api/tenant-settings")[0]
	if req.ContentType != "application/merge-patch+json" {
		t.Errorf("content type = %q", req.ContentType)
	}
	body := decodeBody(t, req)
	block, _ := body["whatsappSettings"].(map[string]interface{})
	if body["tenantId"] != testTenant || body["updatedAt"] != "2025-05-01T09:30:00Z" {
		t.Errorf("body = %v", body)
	}
	if block["isEnabled"] != true {
		t.Errorf("whatsappSettings = %v, want isEnabled", block)
	}
	if creds, _ := block["twilioCredentials"].(map[string]interface{}); creds["accountSid"] != testCreds.AccountSID {
		t.Errorf("credentials = %v", block["twilioCredentials"])
	}
}

func TestUpdateSettingsSendsOnlyGivenFields(t *testing.T) {
	api, client := newFakeAPI(t)
	api.reply(http.MethodPatch, "/api/tenant-settings", http.StatusOK, dto.TenantSettings{TenantID: testTenant})
	svc := NewWhatsAppSettingsService(client)

	off := false
	if _, err := svc.UpdateSettings(context.Background(), dto.WhatsAppSettingsUpdate{IsEnabled: &off}); err != nil {
		t.Fatal(err)
	}
	block, _ := decodeBody(t, api.requests(http.MethodPatch, "/api/tenant-settings")[0])["whatsappSettings"].(map[string]interface{})
	if block["isEnabled"] != false {
		t.Errorf("isEnabled = %v", block["isEnabled"])
	}
	if _, ok := block["webhookUrl"]; ok {
		t.Error("unset webhookUrl must not be sent")
	}

	if _, err := svc.UpdateSettings(context.Background(), dto.WhatsAppSettingsUpdate{}); !errors.Is(err, apperrors.ErrBadRequest) {
		t.Errorf("empty update err = %v, want bad request", err)
	}
}

func TestConnectionTestFailures(t *testing.T) {
	api, client := newFakeAPI(t)
	api.reply(http.MethodPost, "/api/whatsapp/test-connection", http.StatusBadGateway, map[string]string{"title": "provider down"})

	res := NewWhatsAppSettingsService(client).TestConnection(context.Background(), testCreds)
	if res.Success || res.Message != "Connection test failed: 502" || res.Details.AccountStatus != "unknown" {
		t.Errorf("result = %+v", res)
	}

	api.reply(http.MethodPost, "/api/whatsapp/test-connection", http.StatusOK, dto.ConnectionTestResult{Success: true, Message: "Connected"})
	res = NewWhatsAppSettingsService(client).TestConnection(context.Background(), testCreds)
	if !res.Success || res.Message != "Connected" {
		t.Errorf("result = %+v", res)
	}
}
