package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/app/services"
	"github.com/mosc/eventadmin/internal/middleware"
	"github.com/mosc/eventadmin/internal/pkg/helpers"
)

// SponsorController handles sponsors and their event assignments
type SponsorController struct {
	sponsorService services.SponsorService
}

// NewSponsorController creates a new SponsorController
func NewSponsorController(sponsorService services.SponsorService) *SponsorController {
	return &SponsorController{sponsorService: sponsorService}
}

// ListSponsors lists sponsors
// @Summary List sponsors
// @Description Lists sponsors by name with an optional case-insensitive name search. Pages are zero-based.
// @Tags sponsors
// @Produce json
// @Security SessionAuth
// @Param page query int false "Page (zero-based)" default(0)
// @Param size query int false "Page size" default(10)
// @Param search query string false "Name contains"
// @Success 200 {object} dto.APIResponse{data=dto.PageResult[dto.EventSponsorDTO]} "Sponsors"
// @Failure 502 {object} dto.ErrorResponse "Backend request failed"
// @Router /sponsors [get]
func (sc *SponsorController) ListSponsors(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	result, err := sc.sponsorService.ListSponsors(ctx.Request.Context(), page, size, ctx.Query("search"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, result)
}

// GetSponsor retrieves a sponsor by ID
// @Summary Get sponsor
// @Tags sponsors
// @Produce json
// @Security SessionAuth
// @Param id path int true "Sponsor ID"
// @Success 200 {object} dto.APIResponse{data=dto.EventSponsorDTO} "Sponsor"
// @Failure 404 {object} dto.ErrorResponse "Sponsor not found"
// @Router /sponsors/{id} [get]
func (sc *SponsorController) GetSponsor(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Sponsor")
	if !ok {
		return
	}
	sponsor, err := sc.sponsorService.GetSponsor(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, sponsor)
}

// CreateSponsor creates a sponsor
// @Summary Create sponsor
// @Description Name and type are required. isActive defaults to true and priorityRanking to 1.
// @Tags sponsors
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param request body dto.SponsorRequest true "Sponsor"
// @Success 201 {object} dto.APIResponse{data=dto.EventSponsorDTO} "Sponsor created"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Router /sponsors [post]
func (sc *SponsorController) CreateSponsor(ctx *gin.Context) {
	var req dto.SponsorRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	sponsor, err := sc.sponsorService.CreateSponsor(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, sponsor)
}

// UpdateSponsor updates a sponsor
// @Summary Update sponsor
// @Tags sponsors
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param id path int true "Sponsor ID"
// @Param request body dto.SponsorRequest true "Sponsor"
// @Success 200 {object} dto.APIResponse{data=dto.EventSponsorDTO} "Sponsor updated"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 404 {object} dto.ErrorResponse "Sponsor not found"
// @Router /sponsors/{id} [patch]
func (sc *SponsorController) UpdateSponsor(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Sponsor")
	if !ok {
		return
	}
	var req dto.SponsorRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	sponsor, err := sc.sponsorService.UpdateSponsor(ctx.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, sponsor)
}

// DeleteSponsor deletes a sponsor
// @Summary Delete sponsor
// @Tags sponsors
// @Security SessionAuth
// @Param id path int true "Sponsor ID"
// @Success 200 {object} dto.APIResponse "Sponsor deleted"
// @Failure 404 {object} dto.ErrorResponse "Sponsor not found"
// @Router /sponsors/{id} [delete]
func (sc *SponsorController) DeleteSponsor(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Sponsor")
	if !ok {
		return
	}
	if err := sc.sponsorService.DeleteSponsor(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Sponsor deleted successfully")
}

// ListEventSponsors lists the sponsors assigned to an event
// @Summary List event sponsors
// @Tags sponsors
// @Produce json
// @Security SessionAuth
// @Param eventId path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.EventSponsorJoinDTO} "Assignments"
// @Router /events/{eventId}/sponsors [get]
func (sc *SponsorController) ListEventSponsors(ctx *gin.Context) {
	eventID, ok := parseIDParam(ctx, "eventId", "Event")
	if !ok {
		return
	}
	joins, err := sc.sponsorService.ListEventSponsors(ctx.Request.Context(), eventID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, joins)
}

// AvailableSponsors lists sponsors not yet assigned to an event
// @Summary List available sponsors
// @Description Returns every sponsor not assigned to the event, filtered by name, company or type
// @Tags sponsors
// @Produce json
// @Security SessionAuth
// @Param eventId path int true "Event ID"
// @Param page query int false "Page (zero-based)" default(0)
// @Param size query int false "Page size" default(10)
// @Param search query string false "Search term"
// @Success 200 {object} dto.APIResponse{data=dto.AvailableSponsorsResult} "Available sponsors"
// @Router /events/{eventId}/sponsors/available [get]
func (sc *SponsorController) AvailableSponsors(ctx *gin.Context) {
	eventID, ok := parseIDParam(ctx, "eventId", "Event")
	if !ok {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)
	result, err := sc.sponsorService.AvailableSponsors(ctx.Request.Context(), eventID, page, size, ctx.Query("search"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, result)
}

// AssignSponsor assigns a sponsor to an event
// @Summary Assign sponsor
// @Tags sponsors
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param request body dto.SponsorJoinRequest true "Assignment"
// @Success 201 {object} dto.APIResponse{data=dto.EventSponsorJoinDTO} "Assignment created"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Router /sponsor-assignments [post]
func (sc *SponsorController) AssignSponsor(ctx *gin.Context) {
	var req dto.SponsorJoinRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	join, err := sc.sponsorService.AssignSponsor(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, join)
}

// UpdateAssignment changes an assignment
// @Summary Update sponsor assignment
// @Tags sponsors
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param id path int true "Assignment ID"
// @Param request body dto.SponsorJoinRequest true "Assignment"
// @Success 200 {object} dto.APIResponse{data=dto.EventSponsorJoinDTO} "Assignment updated"
// @Failure 404 {object} dto.ErrorResponse "Assignment not found"
// @Router /sponsor-assignments/{id} [patch]
func (sc *SponsorController) UpdateAssignment(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Assignment")
	if !ok {
		return
	}
	var req dto.SponsorJoinRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	join, err := sc.sponsorService.UpdateAssignment(ctx.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, join)
}

// RemoveAssignment removes a sponsor from an event
// @Summary Remove sponsor assignment
// @Tags sponsors
// @Security SessionAuth
// @Param id path int true "Assignment ID"
// @Success 200 {object} dto.APIResponse "Assignment removed"
// @Router /sponsor-assignments/{id} [delete]
func (sc *SponsorController) RemoveAssignment(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Assignment")
	if !ok {
		return
	}
	if err := sc.sponsorService.RemoveAssignment(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Sponsor removed from event")
}
