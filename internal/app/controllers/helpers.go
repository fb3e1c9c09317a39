package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/pkg/helpers"
)

// parseIDParam reads a positive integer path parameter, answering 400 when
// it is malformed.
func parseIDParam(ctx *gin.Context, name, label string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+label+" ID").
			WithDetails(label + " ID must be a positive number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// queryInt64 reads an optional integer query parameter.
func queryInt64(ctx *gin.Context, name string) (int64, bool) {
	v := strings.TrimSpace(ctx.Query(name))
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func respond(ctx *gin.Context, status int, data interface{}) {
	ctx.JSON(status, dto.NewAPIResponse(data, ""))
}

func respondMessage(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, message))
}

// respondList writes a page of data with pagination metadata. X-Total-Count
// mirrors the backend header for clients that read it.
func respondList[T any](ctx *gin.Context, items []T, total int64, page, size int) {
	ctx.Header("X-Total-Count", strconv.FormatInt(total, 10))
	ctx.JSON(http.StatusOK, dto.APIResponse{
		Success: true,
		Data: gin.H{
			"items":      items,
			"pagination": helpers.NewPaginationInfo(total, page, size),
		},
		Timestamp: time.Now(),
	})
}
