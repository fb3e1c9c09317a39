package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/pkg/apperrors"
	"github.com/mosc/eventadmin/internal/pkg/backend"
	"github.com/mosc/eventadmin/internal/pkg/logger"
)

// errorMapping describes how a sentinel error is reported to clients.
type errorMapping struct {
	target   error
	status   int
	code     dto.ErrorCode
	fallback string
}

// Checked in order; the first match wins.
var errorMappings = []errorMapping{
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request"},
	{apperrors.ErrCampaignNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Campaign not found"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
	{apperrors.ErrStepNotAccessible, http.StatusConflict, dto.ErrorCodeConflict, "Complete the previous steps first"},
	{apperrors.ErrCampaignNotEditable, http.StatusConflict, dto.ErrorCodeConflict, "Campaign can no longer be edited"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Conflict"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrTokenNotFound, http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Token not found"},
	{apperrors.ErrMethodNotAllowed, http.StatusMethodNotAllowed, dto.ErrorCodeMethodNotAllowed, "Method not allowed"},
	{apperrors.ErrNotConfigured, http.StatusInternalServerError, dto.ErrorCodeInternalServer, apperrors.ErrNotConfigured.Error()},
	{apperrors.ErrStoreDisabled, http.StatusServiceUnavailable, dto.ErrorCodeServiceUnavailable, "Campaign store is not configured"},
	{apperrors.ErrUpstreamUnavailable, http.StatusServiceUnavailable, dto.ErrorCodeServiceUnavailable, "Backend temporarily unavailable"},
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	status, detail := ErrorDetailFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Str("requestID", c.GetString(RequestIDKey)).Msg("Request failed")
		if gin.Mode() != gin.ReleaseMode {
			detail.WithDebugInfo("%v", err)
		}
	}
	c.JSON(status, dto.NewErrorResponse(detail))
}

// ErrorDetailFor maps err to an HTTP status and the error body.
func ErrorDetailFor(err error) (int, *dto.ErrorDetail) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		msg, ok := apperrors.UserMessage(err)
		if !ok {
			msg = m.fallback
		}
		detail := dto.NewErrorDetail(m.code, msg)
		var ce *apperrors.CustomError
		if errors.As(err, &ce) {
			if field, ok := ce.Details["field"].(string); ok {
				detail.WithField(field)
			}
		}
		if fields := apperrors.FieldMessages(err); len(fields) > 0 {
			detail.WithFieldProblems(fields)
		}
		return m.status, detail
	}

	// Backend rejections other than 404 keep their client-error status so
	// the admin UI can show the backend's message.
	var se *backend.StatusError
	if errors.As(err, &se) {
		detail := dto.NewErrorDetail(dto.ErrorCodeExternalServiceError, "Backend request failed").WithDetails(se.Body)
		if se.Status >= 400 && se.Status < 500 && se.Status != http.StatusUnauthorized {
			return se.Status, detail
		}
		return http.StatusBadGateway, detail
	}

	return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
}

// Recovery turns panics into the standard error body.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("Recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
	})
}
