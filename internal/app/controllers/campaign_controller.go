package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mosc/eventadmin/internal/app/models"
	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/app/services"
	"github.com/mosc/eventadmin/internal/middleware"
	"github.com/mosc/eventadmin/internal/pkg/helpers"
)

// GoToStepRequest names the wizard step to return to.
type GoToStepRequest struct {
	Step models.CampaignStep `json:"step" binding:"required"`
}

// CampaignController drives the bulk messaging wizard
type CampaignController struct {
	campaignService services.CampaignService
}

// NewCampaignController creates a new CampaignController
func NewCampaignController(campaignService services.CampaignService) *CampaignController {
	return &CampaignController{campaignService: campaignService}
}

// ListCampaigns lists campaigns
// @Summary List campaigns
// @Description Lists campaigns newest first, optionally filtered by a comma-separated status list
// @Tags whatsapp
// @Produce json
// @Security SessionAuth
// @Param status query string false "Statuses, e.g. DRAFT,SENDING"
// @Param page query int false "Page (zero-based)" default(0)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=map[string]interface{}} "Campaigns with pagination"
// @Failure 503 {object} dto.ErrorResponse "Campaign store unavailable"
// @Router /whatsapp/campaigns [get]
func (cc *CampaignController) ListCampaigns(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	var statuses []models.CampaignStatus
	for _, s := range strings.Split(ctx.Query("status"), ",") {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			statuses = append(statuses, models.CampaignStatus(s))
		}
	}
	result, err := cc.campaignService.ListCampaigns(ctx.Request.Context(), statuses, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondList(ctx, result.Data, result.TotalCount, page, size)
}

// CreateCampaign starts a new draft
// @Summary Create campaign draft
// @Tags whatsapp
// @Produce json
// @Security SessionAuth
// @Success 201 {object} dto.APIResponse{data=dto.CampaignView} "Draft at the compose step"
// @Router /whatsapp/campaigns [post]
func (cc *CampaignController) CreateCampaign(ctx *gin.Context) {
	createdBy := ctx.GetString(middleware.EmailKey)
	if createdBy == "" {
		createdBy = ctx.GetString(middleware.UserIDKey)
	}
	view, err := cc.campaignService.CreateDraft(ctx.Request.Context(), createdBy)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, view)
}

// GetCampaign retrieves a campaign
// @Summary Get campaign
// @Description Includes live progress while the campaign is sending
// @Tags whatsapp
// @Produce json
// @Security SessionAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignView} "Campaign"
// @Failure 404 {object} dto.ErrorResponse "Campaign not found"
// @Router /whatsapp/campaigns/{id} [get]
func (cc *CampaignController) GetCampaign(ctx *gin.Context) {
	view, err := cc.campaignService.GetCampaign(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, view)
}

// DeleteCampaign removes a campaign that is not sending
// @Summary Delete campaign
// @Tags whatsapp
// @Security SessionAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} dto.APIResponse "Campaign deleted"
// @Failure 409 {object} dto.ErrorResponse "Campaign is sending"
// @Router /whatsapp/campaigns/{id} [delete]
func (cc *CampaignController) DeleteCampaign(ctx *gin.Context) {
	if err := cc.campaignService.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Campaign deleted successfully")
}

// CampaignEvents lists a campaign's audit trail
// @Summary Campaign events
// @Tags whatsapp
// @Produce json
// @Security SessionAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} dto.APIResponse{data=[]models.CampaignEvent} "Events"
// @Router /whatsapp/campaigns/{id}/events [get]
func (cc *CampaignController) CampaignEvents(ctx *gin.Context) {
	events, err := cc.campaignService.Events(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, events)
}

// SaveCompose saves the message step
// @Summary Save compose step
// @Tags whatsapp
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param id path string true "Campaign ID"
// @Param request body dto.ComposeStep true "Message"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignView} "Campaign at the recipients step"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 409 {object} dto.ErrorResponse "Campaign can no longer be edited"
// @Router /whatsapp/campaigns/{id}/compose [put]
func (cc *CampaignController) SaveCompose(ctx *gin.Context) {
	var step dto.ComposeStep
	if !middleware.BindJSON(ctx, &step) {
		return
	}
	cc.respondView(ctx)(cc.campaignService.SaveCompose(ctx.Request.Context(), ctx.Param("id"), step))
}

// SaveRecipients saves the recipients step
// @Summary Save recipients step
// @Description Recipients are deduplicated by phone number
// @Tags whatsapp
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param id path string true "Campaign ID"
// @Param request body dto.RecipientsStep true "Recipients"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignView} "Campaign at the schedule step"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 409 {object} dto.ErrorResponse "Step not reached yet"
// @Router /whatsapp/campaigns/{id}/recipients [put]
func (cc *CampaignController) SaveRecipients(ctx *gin.Context) {
	var step dto.RecipientsStep
	if !middleware.BindJSON(ctx, &step) {
		return
	}
	cc.respondView(ctx)(cc.campaignService.SaveRecipients(ctx.Request.Context(), ctx.Param("id"), step))
}

// SaveSchedule saves the schedule step
// @Summary Save schedule step
// @Tags whatsapp
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param id path string true "Campaign ID"
// @Param request body dto.ScheduleStep true "Schedule"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignView} "Campaign at the review step"
// @Failure 400 {object} dto.ErrorResponse "Scheduled time is not in the future"
// @Router /whatsapp/campaigns/{id}/schedule [put]
func (cc *CampaignController) SaveSchedule(ctx *gin.Context) {
	var step dto.ScheduleStep
	if !middleware.BindJSON(ctx, &step) {
		return
	}
	cc.respondView(ctx)(cc.campaignService.SaveSchedule(ctx.Request.Context(), ctx.Param("id"), step))
}

// GoToStep moves the wizard back to an earlier step
// @Summary Go to wizard step
// @Tags whatsapp
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param id path string true "Campaign ID"
// @Param request body GoToStepRequest true "Target step"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignView} "Campaign"
// @Failure 409 {object} dto.ErrorResponse "Step not accessible"
// @Router /whatsapp/campaigns/{id}/step [post]
func (cc *CampaignController) GoToStep(ctx *gin.Context) {
	var req GoToStepRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	cc.respondView(ctx)(cc.campaignService.GoToStep(ctx.Request.Context(), ctx.Param("id"), req.Step))
}

// PreviousStep moves the wizard back one step
// @Summary Previous wizard step
// @Tags whatsapp
// @Produce json
// @Security SessionAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignView} "Campaign"
// @Router /whatsapp/campaigns/{id}/back [post]
func (cc *CampaignController) PreviousStep(ctx *gin.Context) {
	cc.respondView(ctx)(cc.campaignService.PreviousStep(ctx.Request.Context(), ctx.Param("id")))
}

// SubmitCampaign sends or schedules the campaign
// @Summary Submit campaign
// @Description Re-validates every step, then hands the campaign to the backend and starts the progress monitor
// @Tags whatsapp
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param id path string true "Campaign ID"
// @Param request body dto.ReviewStep true "Confirmation"
// @Success 202 {object} dto.APIResponse{data=dto.CampaignView} "Campaign sending or scheduled"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 502 {object} dto.ErrorResponse "Backend rejected the send"
// @Router /whatsapp/campaigns/{id}/submit [post]
func (cc *CampaignController) SubmitCampaign(ctx *gin.Context) {
	var review dto.ReviewStep
	if !middleware.BindJSON(ctx, &review) {
		return
	}
	view, err := cc.campaignService.Submit(ctx.Request.Context(), ctx.Param("id"), review)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusAccepted, view)
}

// CancelCampaign cancels a scheduled or sending campaign
// @Summary Cancel campaign
// @Tags whatsapp
// @Produce json
// @Security SessionAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignView} "Campaign cancelled"
// @Failure 409 {object} dto.ErrorResponse "Campaign already finished"
// @Router /whatsapp/campaigns/{id}/cancel [post]
func (cc *CampaignController) CancelCampaign(ctx *gin.Context) {
	cc.respondView(ctx)(cc.campaignService.Cancel(ctx.Request.Context(), ctx.Param("id")))
}

func (cc *CampaignController) respondView(ctx *gin.Context) func(*dto.CampaignView, error) {
	return func(view *dto.CampaignView, err error) {
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		respond(ctx, http.StatusOK, view)
	}
}
