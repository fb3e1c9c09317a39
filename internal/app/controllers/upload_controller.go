package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mosc/eventadmin/internal/pkg/apperrors"
	"github.com/mosc/eventadmin/internal/pkg/logger"
)

// UploadController streams multipart uploads to the backend without
// buffering them.
type UploadController struct {
	api ProxyBackend
}

// NewUploadController creates a new upload controller
func NewUploadController(api ProxyBackend) *UploadController {
	return &UploadController{api: api}
}

// UploadFailure is the body returned when the backend rejects an upload.
func UploadFailure(status int) gin.H {
	return gin.H{
		"error":   "Upload failed",
		"status":  status,
		"message": fmt.Sprintf("Upload operation failed with HTTP status %d", status),
		"success": false,
	}
}

// Upload godoc
// @Summary Stream a media upload to the backend
// @Description Pipes the multipart body to event-medias/upload-multiple or event-medias/upload unchanged. The single upload endpoint also forwards the query string.
// @Tags proxy, media
// @Security SessionAuth
// @Accept multipart/form-data
// @Produce json
// @Param kind path string true "Upload endpoint" Enums(upload, upload-multiple)
// @Success 200 {object} interface{} "Backend response"
// @Failure 405 {string} string "Method not allowed"
// @Failure 500 {object} map[string]interface{} "Upload failed"
// @Router /proxy/event-medias/{kind} [post]
func (uc *UploadController) Upload(c *gin.Context, kind string) {
	if c.Request.Method != http.MethodPost {
		c.Header("Allow", http.MethodPost)
		c.String(http.StatusMethodNotAllowed, "Method %s Not Allowed", c.Request.Method)
		return
	}

	header := http.Header{}
	if ct := c.GetHeader("Content-Type"); ct != "" {
		header.Set("Content-Type", ct)
	}
	if cl := c.GetHeader("Content-Length"); cl != "" {
		header.Set("Content-Length", cl)
	}

	var query url.Values
	if kind == "upload" {
		query = c.Request.URL.Query()
	}

	resp, err := uc.api.Stream(c.Request.Context(), http.MethodPost, "event-medias/"+kind, query, c.Request.Body, header)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotConfigured) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": apperrors.ErrNotConfigured.Error()})
			return
		}
		logger.Error().Err(err).Str("endpoint", kind).Msg("Upload proxy failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "details": err.Error()})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warn().Int("status", resp.StatusCode).Str("endpoint", kind).Msg("Backend rejected upload")
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		status := resp.StatusCode
		if status < 400 {
			status = http.StatusInternalServerError
		}
		c.JSON(status, UploadFailure(resp.StatusCode))
		return
	}

	for k, vs := range resp.Header {
		switch strings.ToLower(k) {
		case "content-encoding", "transfer-encoding":
			continue
		}
		for _, v := range vs {
			c.Writer.Header().Add(k, v)
		}
	}
	c.Status(resp.StatusCode)
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		logger.Warn().Err(err).Str("endpoint", kind).Msg("Failed to relay upload response")
	}
}
