package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/app/services"
	"github.com/mosc/eventadmin/internal/middleware"
	"github.com/mosc/eventadmin/internal/pkg/helpers"
)

// maxUploadMemory is how much of a multipart form is kept in memory; the
// rest spills to temporary files.
const maxUploadMemory = 32 << 20

// MediaController handles event media operations
type MediaController struct {
	mediaService services.MediaService
}

// NewMediaController creates a new MediaController
func NewMediaController(mediaService services.MediaService) *MediaController {
	return &MediaController{mediaService: mediaService}
}

// ListEventMedia lists the media of one event
// @Summary List event media
// @Description Lists an event's media newest first, excluding official documents. Pages are zero-based.
// @Tags media
// @Produce json
// @Security SessionAuth
// @Param eventId path int true "Event ID"
// @Param page query int false "Page (zero-based)" default(0)
// @Param size query int false "Page size" default(10)
// @Param search query string false "Title contains"
// @Param eventFlyer query bool false "Only event flyers"
// @Success 200 {object} dto.APIResponse{data=map[string]interface{}} "Media page with pagination"
// @Failure 400 {object} dto.ErrorResponse "Invalid event ID"
// @Failure 401 {object} dto.ErrorResponse "No admin session"
// @Failure 502 {object} dto.ErrorResponse "Backend request failed"
// @Router /events/{eventId}/media [get]
func (mc *MediaController) ListEventMedia(ctx *gin.Context) {
	eventID, ok := parseIDParam(ctx, "eventId", "Event")
	if !ok {
		return
	}
	var q dto.MediaListQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}
	q.EventID = eventID
	q.Page, q.Size = helpers.NormalizePage(q.Page, q.Size)

	result, err := mc.mediaService.ListEventMedia(ctx.Request.Context(), q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondList(ctx, result.Data, result.TotalCount, q.Page, q.Size)
}

// ListOfficialDocuments lists an event's official documents
// @Summary List official documents
// @Description Lists media flagged as event management official documents
// @Tags media
// @Produce json
// @Security SessionAuth
// @Param eventId path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.EventMediaDTO} "Documents"
// @Failure 400 {object} dto.ErrorResponse "Invalid event ID"
// @Router /events/{eventId}/documents [get]
func (mc *MediaController) ListOfficialDocuments(ctx *gin.Context) {
	eventID, ok := parseIDParam(ctx, "eventId", "Event")
	if !ok {
		return
	}
	docs, err := mc.mediaService.ListOfficialDocuments(ctx.Request.Context(), eventID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, docs)
}

// UploadMedia uploads files for an event
// @Summary Upload event media
// @Description Validates the form and forwards the files to the backend's upload-multiple endpoint
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Security SessionAuth
// @Param eventId path int true "Event ID"
// @Param files formData file true "Files to upload"
// @Param title formData string true "Title"
// @Param startDisplayingFromDate formData string true "Start displaying from (YYYY-MM-DD)"
// @Param description formData string false "Description"
// @Param eventFlyer formData bool false "Event flyer"
// @Param isPublic formData bool false "Public"
// @Success 201 {object} dto.APIResponse{data=[]dto.EventMediaDTO} "Uploaded media"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 502 {object} dto.ErrorResponse "Backend request failed"
// @Router /events/{eventId}/media [post]
func (mc *MediaController) UploadMedia(ctx *gin.Context) {
	eventID, ok := parseIDParam(ctx, "eventId", "Event")
	if !ok {
		return
	}
	if err := ctx.Request.ParseMultipartForm(maxUploadMemory); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid upload form").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}
	var req dto.MediaUploadRequest
	if !middleware.BindForm(ctx, &req) {
		return
	}
	req.EventID = eventID

	files := ctx.Request.MultipartForm.File["files"]
	media, err := mc.mediaService.Upload(ctx.Request.Context(), req, files)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, media)
}

// UpdateMedia edits media metadata
// @Summary Update media
// @Description Merge-patches a media item. eventMediaType defaults to gallery and storageType to s3.
// @Tags media
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param id path int true "Media ID"
// @Param request body dto.MediaUpdateRequest true "Changes"
// @Success 200 {object} dto.APIResponse{data=dto.EventMediaDTO} "Updated media"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 404 {object} dto.ErrorResponse "Media not found"
// @Router /media/{id} [patch]
func (mc *MediaController) UpdateMedia(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Media")
	if !ok {
		return
	}
	var req dto.MediaUpdateRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	media, err := mc.mediaService.Update(ctx.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, media)
}

// DeleteMedia removes a media item
// @Summary Delete media
// @Tags media
// @Produce json
// @Security SessionAuth
// @Param id path int true "Media ID"
// @Success 200 {object} dto.APIResponse "Media deleted"
// @Failure 404 {object} dto.ErrorResponse "Media not found"
// @Router /media/{id} [delete]
func (mc *MediaController) DeleteMedia(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Media")
	if !ok {
		return
	}
	if err := mc.mediaService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Media deleted successfully")
}
