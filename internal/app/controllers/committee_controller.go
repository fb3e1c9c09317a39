package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/app/services"
	"github.com/mosc/eventadmin/internal/middleware"
)

// CommitteeController handles executive committee members
type CommitteeController struct {
	committeeService services.CommitteeService
}

// NewCommitteeController creates a new CommitteeController
func NewCommitteeController(committeeService services.CommitteeService) *CommitteeController {
	return &CommitteeController{committeeService: committeeService}
}

// ListMembers lists committee members
// @Summary List committee members
// @Description Ordered by priority, then name
// @Tags committee
// @Produce json
// @Security SessionAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.ExecutiveCommitteeMemberDTO} "Members"
// @Router /committee-members [get]
func (cc *CommitteeController) ListMembers(ctx *gin.Context) {
	members, err := cc.committeeService.ListMembers(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, members)
}

// GetMember retrieves a committee member
// @Summary Get committee member
// @Tags committee
// @Produce json
// @Security SessionAuth
// @Param id path int true "Member ID"
// @Success 200 {object} dto.APIResponse{data=dto.ExecutiveCommitteeMemberDTO} "Member"
// @Failure 404 {object} dto.ErrorResponse "Member not found"
// @Router /committee-members/{id} [get]
func (cc *CommitteeController) GetMember(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Member")
	if !ok {
		return
	}
	member, err := cc.committeeService.GetMember(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, member)
}

// CreateMember adds a committee member
// @Summary Create committee member
// @Tags committee
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param request body dto.ExecutiveCommitteeMemberDTO true "Member"
// @Success 201 {object} dto.APIResponse{data=dto.ExecutiveCommitteeMemberDTO} "Member created"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Router /committee-members [post]
func (cc *CommitteeController) CreateMember(ctx *gin.Context) {
	var req dto.ExecutiveCommitteeMemberDTO
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	member, err := cc.committeeService.CreateMember(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, member)
}

// UpdateMember merge-patches a committee member
// @Summary Update committee member
// @Description Only the fields present in the body change
// @Tags committee
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param id path int true "Member ID"
// @Param request body map[string]interface{} true "Changed fields"
// @Success 200 {object} dto.APIResponse{data=dto.ExecutiveCommitteeMemberDTO} "Member updated"
// @Failure 404 {object} dto.ErrorResponse "Member not found"
// @Router /committee-members/{id} [patch]
func (cc *CommitteeController) UpdateMember(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Member")
	if !ok {
		return
	}
	var patch map[string]interface{}
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}
	member, err := cc.committeeService.UpdateMember(ctx.Request.Context(), id, patch)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, member)
}

// DeleteMember removes a committee member
// @Summary Delete committee member
// @Tags committee
// @Security SessionAuth
// @Param id path int true "Member ID"
// @Success 200 {object} dto.APIResponse "Member deleted"
// @Router /committee-members/{id} [delete]
func (cc *CommitteeController) DeleteMember(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Member")
	if !ok {
		return
	}
	if err := cc.committeeService.DeleteMember(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Committee member deleted successfully")
}

// SetProfileImage points a member at an uploaded image URL
// @Summary Set committee member image URL
// @Tags committee
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param id path int true "Member ID"
// @Param request body dto.ProfileImageRequest true "Image URL"
// @Success 200 {object} dto.APIResponse{data=dto.ExecutiveCommitteeMemberDTO} "Member updated"
// @Router /committee-members/{id}/profile-image [put]
func (cc *CommitteeController) SetProfileImage(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Member")
	if !ok {
		return
	}
	var req dto.ProfileImageRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	member, err := cc.committeeService.UpdateProfileImage(ctx.Request.Context(), id, req.ProfileImageURL)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, member)
}

// UploadProfileImage uploads a member's picture
// @Summary Upload committee member image
// @Description Uploads the file to the backend and patches the member with the returned URL
// @Tags committee
// @Accept multipart/form-data
// @Produce json
// @Security SessionAuth
// @Param id path int true "Member ID"
// @Param file formData file true "Image"
// @Success 200 {object} dto.APIResponse{data=dto.ProfileImageResult} "Image uploaded"
// @Failure 400 {object} dto.ErrorResponse "No file"
// @Router /committee-members/{id}/profile-image [post]
func (cc *CommitteeController) UploadProfileImage(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Member")
	if !ok {
		return
	}
	file, err := ctx.FormFile("file")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "No file uploaded").WithField("file")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}
	result, err := cc.committeeService.UploadProfileImage(ctx.Request.Context(), id, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, result)
}
