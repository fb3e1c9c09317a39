package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/pkg/apperrors"
	"github.com/mosc/eventadmin/internal/pkg/backend"
	"github.com/mosc/eventadmin/internal/pkg/helpers"
	"github.com/mosc/eventadmin/internal/pkg/logger"
)

const tenantSettingsResource = "tenant-settings"

// WhatsAppSettingsService manages the tenant's WhatsApp provider settings,
// which live in the backend tenant settings.
type WhatsAppSettingsService interface {
	Settings(ctx context.Context) (*dto.TenantSettings, error)
	UpdateSettings(ctx context.Context, update dto.WhatsAppSettingsUpdate) (*dto.TenantSettings, error)
	SaveCredentials(ctx context.Context, creds dto.TwilioCredentials) (*dto.TenantSettings, error)
	TestConnection(ctx context.Context, creds dto.TwilioCredentials) dto.ConnectionTestResult
}

type whatsAppSettingsServiceImpl struct {
	api Backend
	now func() time.Time
}

// NewWhatsAppSettingsService creates a new settings service instance
func NewWhatsAppSettingsService(api Backend) WhatsAppSettingsService {
	return &whatsAppSettingsServiceImpl{api: api, now: time.Now}
}

// Settings returns the tenant's settings with the provider auth token masked.
func (s *whatsAppSettingsServiceImpl) Settings(ctx context.Context) (*dto.TenantSettings, error) {
	var list []dto.TenantSettings
	if _, err := s.api.GetJSON(ctx, tenantSettingsResource, nil, &list); err != nil {
		return nil, fmt.Errorf("error fetching tenant settings: %w", err)
	}
	if len(list) == 0 {
		return nil, apperrors.NewResourceNotFoundError("No settings found for this tenant")
	}
	return maskSettings(&list[0]), nil
}

func (s *whatsAppSettingsServiceImpl) UpdateSettings(ctx context.Context, update dto.WhatsAppSettingsUpdate) (*dto.TenantSettings, error) {
	block := map[string]interface{}{}
	if update.IsEnabled != nil {
		block["isEnabled"] = *update.IsEnabled
	}
	if update.WebhookURL != nil {
		block["webhookUrl"] = *update.WebhookURL
	}
	if update.WebhookToken != nil {
		block["webhookToken"] = *update.WebhookToken
	}
	if len(block) == 0 {
		return nil, apperrors.NewBadRequestError("Nothing to update")
	}
	return s.patch(ctx, block)
}

// SaveCredentials stores the credentials and enables the integration.
func (s *whatsAppSettingsServiceImpl) SaveCredentials(ctx context.Context, creds dto.TwilioCredentials) (*dto.TenantSettings, error) {
	return s.patch(ctx, map[string]interface{}{
		"twilioCredentials": creds,
		"isEnabled":         true,
	})
}

func (s *whatsAppSettingsServiceImpl) patch(ctx context.Context, block map[string]interface{}) (*dto.TenantSettings, error) {
	stamp := helpers.FormatTime(s.now())
	block["updatedAt"] = stamp
	body := map[string]interface{}{
		"tenantId":         s.api.TenantID(),
		"whatsappSettings": block,
		"updatedAt":        stamp,
	}

	var settings dto.TenantSettings
	if err := s.api.PatchJSON(ctx, tenantSettingsResource, body, &settings); err != nil {
		return nil, fmt.Errorf("error updating WhatsApp settings: %w", err)
	}
	return maskSettings(&settings), nil
}

// TestConnection asks the backend to try the credentials. Failures are
// reported in the result rather than returned.
func (s *whatsAppSettingsServiceImpl) TestConnection(ctx context.Context, creds dto.TwilioCredentials) dto.ConnectionTestResult {
	body := map[string]interface{}{
		"accountSid":   creds.AccountSID,
		"authToken":    creds.AuthToken,
		"whatsappFrom": creds.WhatsAppFrom,
		"tenantId":     s.api.TenantID(),
		"testAt":       helpers.FormatTime(s.now()),
	}
	if creds.WebhookURL != "" {
		body["webhookUrl"] = creds.WebhookURL
	}
	if creds.WebhookToken != "" {
		body["webhookToken"] = creds.WebhookToken
	}

	var result dto.ConnectionTestResult
	err := s.api.PostJSON(ctx, "whatsapp/test-connection", nil, body, &result)
	if err == nil {
		return result
	}

	logger.Warn().Err(err).Msg("WhatsApp connection test failed")
	failed := dto.ConnectionTestResult{Timestamp: helpers.FormatTime(s.now())}
	var se *backend.StatusError
	if errors.As(err, &se) {
		failed.Message = fmt.Sprintf("Connection test failed: %d", se.Status)
		failed.Details = &dto.ConnectionTestDetails{AccountStatus: "unknown", WhatsAppStatus: "unknown", WebhookStatus: "unknown"}
		return failed
	}
	failed.Message = "Connection test error: " + err.Error()
	failed.Details = &dto.ConnectionTestDetails{AccountStatus: "error", WhatsAppStatus: "error", WebhookStatus: "error"}
	return failed
}

// maskSettings hides all but the last four characters of the auth token.
func maskSettings(settings *dto.TenantSettings) *dto.TenantSettings {
	if settings.WhatsAppSettings == nil || settings.WhatsAppSettings.TwilioCredentials == nil {
		return settings
	}
	creds := *settings.WhatsAppSettings.TwilioCredentials
	if n := len(creds.AuthToken); n > 4 {
		creds.AuthToken = strings.Repeat("*", n-4) + creds.AuthToken[n-4:]
	} else {
		creds.AuthToken = strings.Repeat("*", n)
	}
	ws := *settings.WhatsAppSettings
	ws.TwilioCredentials = &creds
	settings.WhatsAppSettings = &ws
	return settings
}
