package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/app/services"
	"github.com/mosc/eventadmin/internal/middleware"
)

// WhatsAppSettingsController handles the tenant's WhatsApp provider settings
type WhatsAppSettingsController struct {
	settingsService services.WhatsAppSettingsService
}

// NewWhatsAppSettingsController creates a new WhatsAppSettingsController
func NewWhatsAppSettingsController(settingsService services.WhatsAppSettingsService) *WhatsAppSettingsController {
	return &WhatsAppSettingsController{settingsService: settingsService}
}

// GetSettings returns the tenant settings
// @Summary WhatsApp settings
// @Description The provider auth token is masked
// @Tags whatsapp
// @Produce json
// @Security SessionAuth
// @Success 200 {object} dto.APIResponse{data=dto.TenantSettings} "Settings"
// @Failure 404 {object} dto.ErrorResponse "No settings for the tenant"
// @Router /whatsapp/settings [get]
func (sc *WhatsAppSettingsController) GetSettings(ctx *gin.Context) {
	settings, err := sc.settingsService.Settings(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, settings)
}

// UpdateSettings toggles the integration or changes the webhook
// @Summary Update WhatsApp settings
// @Tags whatsapp
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param request body dto.WhatsAppSettingsUpdate true "Changed fields"
// @Success 200 {object} dto.APIResponse{data=dto.TenantSettings} "Updated settings"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Router /whatsapp/settings [patch]
func (sc *WhatsAppSettingsController) UpdateSettings(ctx *gin.Context) {
	var req dto.WhatsAppSettingsUpdate
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	settings, err := sc.settingsService.UpdateSettings(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, settings)
}

// SaveCredentials stores provider credentials and enables the integration
// @Summary Save WhatsApp provider credentials
// @Tags whatsapp
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param request body dto.TwilioCredentials true "Credentials"
// @Success 200 {object} dto.APIResponse{data=dto.TenantSettings} "Updated settings"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Router /whatsapp/settings/credentials [put]
func (sc *WhatsAppSettingsController) SaveCredentials(ctx *gin.Context) {
	var req dto.TwilioCredentials
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	settings, err := sc.settingsService.SaveCredentials(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, settings)
}

// TestConnection tries credentials without saving them
// @Summary Test WhatsApp connection
// @Tags whatsapp
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param request body dto.TwilioCredentials true "Credentials"
// @Success 200 {object} dto.APIResponse{data=dto.ConnectionTestResult} "Test outcome"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Router /whatsapp/settings/test-connection [post]
func (sc *WhatsAppSettingsController) TestConnection(ctx *gin.Context) {
	var req dto.TwilioCredentials
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	respond(ctx, http.StatusOK, sc.settingsService.TestConnection(ctx.Request.Context(), req))
}
