package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/app/services"
	"github.com/mosc/eventadmin/internal/middleware"
)

// GalleryController manages the public photo gallery
type GalleryController struct {
	galleryService services.GalleryService
}

// NewGalleryController creates a new GalleryController
func NewGalleryController(galleryService services.GalleryService) *GalleryController {
	return &GalleryController{galleryService: galleryService}
}

// ListAlbums lists gallery albums
// @Summary List gallery albums
// @Tags gallery
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.GalleryAlbum} "Albums"
// @Router /gallery [get]
func (gc *GalleryController) ListAlbums(ctx *gin.Context) {
	albums, err := gc.galleryService.ListAlbums()
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, albums)
}

// ListPhotos lists an album's photos
// @Summary List gallery photos
// @Tags gallery
// @Produce json
// @Param album path string true "Album"
// @Success 200 {object} dto.APIResponse{data=[]dto.GalleryPhoto} "Photos"
// @Failure 400 {object} dto.ErrorResponse "Invalid album name"
// @Router /gallery/{album} [get]
func (gc *GalleryController) ListPhotos(ctx *gin.Context) {
	photos, err := gc.galleryService.ListPhotos(ctx.Param("album"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, photos)
}

// UploadPhotos adds photos to an album
// @Summary Upload gallery photos
// @Tags gallery
// @Accept multipart/form-data
// @Produce json
// @Security SessionAuth
// @Param album path string true "Album"
// @Param photos formData file true "Images"
// @Success 201 {object} dto.APIResponse{data=[]dto.GalleryPhoto} "Stored photos"
// @Failure 400 {object} dto.ErrorResponse "Invalid upload"
// @Router /gallery/{album} [post]
func (gc *GalleryController) UploadPhotos(ctx *gin.Context) {
	form, err := ctx.MultipartForm()
	if err != nil || len(form.File["photos"]) == 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "No photos uploaded").WithField("photos")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}
	photos, err := gc.galleryService.UploadPhotos(ctx.Param("album"), form.File["photos"])
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, photos)
}

// DeletePhoto removes a photo
// @Summary Delete gallery photo
// @Tags gallery
// @Security SessionAuth
// @Param album path string true "Album"
// @Param name path string true "File name"
// @Success 200 {object} dto.APIResponse "Photo deleted"
// @Failure 404 {object} dto.ErrorResponse "Photo not found"
// @Router /gallery/{album}/{name} [delete]
func (gc *GalleryController) DeletePhoto(ctx *gin.Context) {
	if err := gc.galleryService.DeletePhoto(ctx.Param("album"), ctx.Param("name")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Photo deleted successfully")
}
