package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/app/services"
	"github.com/mosc/eventadmin/internal/middleware"
	"github.com/mosc/eventadmin/internal/pkg/helpers"
)

// PhoneValidationRequest lists numbers to check.
type PhoneValidationRequest struct {
	Phones []string `json:"phones" binding:"required,min=1"`
}

// WhatsAppController handles direct WhatsApp messaging and bulk job control
type WhatsAppController struct {
	whatsAppService services.WhatsAppService
}

// NewWhatsAppController creates a new WhatsAppController
func NewWhatsAppController(whatsAppService services.WhatsAppService) *WhatsAppController {
	return &WhatsAppController{whatsAppService: whatsAppService}
}

// SendMessage sends a single message
// @Summary Send WhatsApp message
// @Tags whatsapp
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param request body dto.WhatsAppMessageRequest true "Message"
// @Success 201 {object} dto.APIResponse{data=dto.WhatsAppMessageStatus} "Message accepted"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 502 {object} dto.ErrorResponse "Backend request failed"
// @Router /whatsapp/messages [post]
func (wc *WhatsAppController) SendMessage(ctx *gin.Context) {
	var req dto.WhatsAppMessageRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	status, err := wc.whatsAppService.SendMessage(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, status)
}

// MessageStatus looks up one message
// @Summary WhatsApp message status
// @Tags whatsapp
// @Produce json
// @Security SessionAuth
// @Param messageId path string true "Message ID"
// @Success 200 {object} dto.APIResponse{data=dto.WhatsAppMessageStatus} "Status"
// @Failure 404 {object} dto.ErrorResponse "Message not found"
// @Router /whatsapp/messages/{messageId} [get]
func (wc *WhatsAppController) MessageStatus(ctx *gin.Context) {
	status, err := wc.whatsAppService.MessageStatus(ctx.Request.Context(), ctx.Param("messageId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, status)
}

// SendBulk starts or schedules a bulk send
// @Summary Send bulk WhatsApp messages
// @Description Sends immediately, or schedules the job when scheduledAt is set
// @Tags whatsapp
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param request body dto.BulkWhatsAppRequest true "Bulk request"
// @Success 202 {object} dto.APIResponse{data=dto.BulkSendResult} "Job accepted"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Router /whatsapp/bulk [post]
func (wc *WhatsAppController) SendBulk(ctx *gin.Context) {
	var req dto.BulkWhatsAppRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	var (
		result *dto.BulkSendResult
		err    error
	)
	if req.ScheduledAt != nil {
		result, err = wc.whatsAppService.ScheduleBulk(ctx.Request.Context(), req, *req.ScheduledAt)
	} else {
		result, err = wc.whatsAppService.SendBulk(ctx.Request.Context(), req)
	}
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusAccepted, result)
}

// BulkHistory lists past bulk jobs
// @Summary Bulk send history
// @Tags whatsapp
// @Produce json
// @Security SessionAuth
// @Param page query int false "Page (zero-based)" default(0)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=map[string]interface{}} "History with pagination"
// @Router /whatsapp/bulk [get]
func (wc *WhatsAppController) BulkHistory(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	result, err := wc.whatsAppService.BulkHistory(ctx.Request.Context(), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondList(ctx, result.Data, result.TotalCount, page, size)
}

// BulkProgress reports a bulk job's progress
// @Summary Bulk send progress
// @Tags whatsapp
// @Produce json
// @Security SessionAuth
// @Param bulkId path string true "Bulk job ID"
// @Success 200 {object} dto.APIResponse{data=dto.BulkMessageProgress} "Progress"
// @Failure 404 {object} dto.ErrorResponse "Job not found"
// @Router /whatsapp/bulk/{bulkId}/progress [get]
func (wc *WhatsAppController) BulkProgress(ctx *gin.Context) {
	progress, err := wc.whatsAppService.BulkProgress(ctx.Request.Context(), ctx.Param("bulkId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, progress)
}

// CancelBulk stops a bulk job
// @Summary Cancel bulk send
// @Tags whatsapp
// @Security SessionAuth
// @Param bulkId path string true "Bulk job ID"
// @Success 200 {object} dto.APIResponse "Job cancelled"
// @Router /whatsapp/bulk/{bulkId}/cancel [post]
func (wc *WhatsAppController) CancelBulk(ctx *gin.Context) {
	if err := wc.whatsAppService.CancelBulk(ctx.Request.Context(), ctx.Param("bulkId")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Bulk send cancelled")
}

// RetryFailed re-queues a job's failed messages
// @Summary Retry failed messages
// @Tags whatsapp
// @Produce json
// @Security SessionAuth
// @Param bulkId path string true "Bulk job ID"
// @Success 200 {object} dto.APIResponse{data=dto.RetryResult} "Retried"
// @Router /whatsapp/bulk/{bulkId}/retry [post]
func (wc *WhatsAppController) RetryFailed(ctx *gin.Context) {
	result, err := wc.whatsAppService.RetryFailed(ctx.Request.Context(), ctx.Param("bulkId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, result)
}

// Analytics summarizes messaging for a period
// @Summary WhatsApp analytics
// @Tags whatsapp
// @Produce json
// @Security SessionAuth
// @Param period query string false "Period such as 7d, 30d or 90d" default(30d)
// @Success 200 {object} dto.APIResponse{data=dto.WhatsAppAnalytics} "Analytics"
// @Router /whatsapp/analytics [get]
func (wc *WhatsAppController) Analytics(ctx *gin.Context) {
	analytics, err := wc.whatsAppService.Analytics(ctx.Request.Context(), strings.TrimSpace(ctx.Query("period")))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, analytics)
}

// ValidatePhones splits numbers into valid and invalid
// @Summary Validate phone numbers
// @Description Asks the backend, falling back to the local E.164 check when it is unavailable
// @Tags whatsapp
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param request body PhoneValidationRequest true "Numbers"
// @Success 200 {object} dto.APIResponse{data=dto.PhoneValidationResult} "Result"
// @Router /whatsapp/phone-validation [post]
func (wc *WhatsAppController) ValidatePhones(ctx *gin.Context) {
	var req PhoneValidationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	respond(ctx, http.StatusOK, wc.whatsAppService.ValidatePhoneNumbers(ctx.Request.Context(), req.Phones))
}
