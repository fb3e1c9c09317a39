package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/app/services"
	"github.com/mosc/eventadmin/internal/middleware"
	"github.com/mosc/eventadmin/internal/pkg/helpers"
)

// UserProfileController handles member profiles
type UserProfileController struct {
	profileService services.UserProfileService
}

// NewUserProfileController creates a new UserProfileController
func NewUserProfileController(profileService services.UserProfileService) *UserProfileController {
	return &UserProfileController{profileService: profileService}
}

// ListProfiles lists user profiles
// @Summary List user profiles
// @Description Most recently updated first. search matches first name, last name or email.
// @Tags users
// @Produce json
// @Security SessionAuth
// @Param search query string false "Search term"
// @Param status query string false "User status"
// @Param role query string false "User role"
// @Param page query int false "Page (zero-based)" default(0)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=map[string]interface{}} "Profiles with pagination"
// @Router /user-profiles [get]
func (uc *UserProfileController) ListProfiles(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	result, err := uc.profileService.ListProfiles(ctx.Request.Context(), services.UserProfileQuery{
		Search: ctx.Query("search"),
		Status: ctx.Query("status"),
		Role:   ctx.Query("role"),
		Page:   page,
		Size:   size,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondList(ctx, result.Data, result.TotalCount, page, size)
}

// GetProfile retrieves a profile by ID
// @Summary Get user profile
// @Tags users
// @Produce json
// @Security SessionAuth
// @Param id path int true "Profile ID"
// @Success 200 {object} dto.APIResponse{data=dto.UserProfileDTO} "Profile"
// @Failure 404 {object} dto.ErrorResponse "Profile not found"
// @Router /user-profiles/{id} [get]
func (uc *UserProfileController) GetProfile(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Profile")
	if !ok {
		return
	}
	profile, err := uc.profileService.GetProfile(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, profile)
}

// GetProfileByUserID looks a profile up by its auth user ID
// @Summary Get user profile by user ID
// @Tags users
// @Produce json
// @Security SessionAuth
// @Param userId path string true "User ID"
// @Success 200 {object} dto.APIResponse{data=dto.UserProfileDTO} "Profile"
// @Failure 404 {object} dto.ErrorResponse "Profile not found"
// @Router /user-profiles/by-user/{userId} [get]
func (uc *UserProfileController) GetProfileByUserID(ctx *gin.Context) {
	profile, err := uc.profileService.GetProfileByUserID(ctx.Request.Context(), ctx.Param("userId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, profile)
}

// UpdateProfile merge-patches a profile
// @Summary Update user profile
// @Tags users
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param id path int true "Profile ID"
// @Param request body dto.UserProfileUpdate true "Changed fields"
// @Success 200 {object} dto.APIResponse{data=dto.UserProfileDTO} "Profile updated"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Router /user-profiles/{id} [patch]
func (uc *UserProfileController) UpdateProfile(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Profile")
	if !ok {
		return
	}
	var req dto.UserProfileUpdate
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	profile, err := uc.profileService.UpdateProfile(ctx.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, profile)
}
