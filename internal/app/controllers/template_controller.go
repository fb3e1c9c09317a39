package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/app/services"
	"github.com/mosc/eventadmin/internal/middleware"
)

// TemplateController manages stored message templates
type TemplateController struct {
	templateService services.TemplateService
}

// NewTemplateController creates a new TemplateController
func NewTemplateController(templateService services.TemplateService) *TemplateController {
	return &TemplateController{templateService: templateService}
}

// ListTemplates lists message templates
// @Summary List message templates
// @Tags whatsapp
// @Produce json
// @Security SessionAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.MessageTemplate} "Templates"
// @Failure 503 {object} dto.ErrorResponse "Template store unavailable"
// @Router /whatsapp/templates [get]
func (tc *TemplateController) ListTemplates(ctx *gin.Context) {
	templates, err := tc.templateService.ListTemplates(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, templates)
}

// SaveTemplate creates or replaces a template by name
// @Summary Save message template
// @Tags whatsapp
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param request body dto.TemplateRequest true "Template"
// @Success 200 {object} dto.APIResponse{data=dto.MessageTemplate} "Template saved"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Router /whatsapp/templates [post]
func (tc *TemplateController) SaveTemplate(ctx *gin.Context) {
	var req dto.TemplateRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	template, err := tc.templateService.SaveTemplate(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, template)
}

// PreviewTemplate renders a template for one recipient
// @Summary Preview message
// @Description Substitutes {{name}}, {{phone}}, {{email}}, {{eventName}} and custom parameters
// @Tags whatsapp
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param request body dto.TemplatePreviewRequest true "Body or template name plus recipient"
// @Success 200 {object} dto.APIResponse{data=dto.TemplatePreview} "Rendered message"
// @Failure 404 {object} dto.ErrorResponse "Template not found"
// @Router /whatsapp/templates/preview [post]
func (tc *TemplateController) PreviewTemplate(ctx *gin.Context) {
	var req dto.TemplatePreviewRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	preview, err := tc.templateService.Preview(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, preview)
}
