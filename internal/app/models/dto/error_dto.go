package dto

import (
	"fmt"
	"sort"
	"time"
)

// ErrorCode tells the admin UI which kind of failure it is showing.
type ErrorCode string

const (
	// Admin session
	ErrorCodeInvalidCredentials ErrorCode = "SESSION_BAD_CREDENTIALS"
	ErrorCodeUnauthorized       ErrorCode = "SESSION_REQUIRED"
	ErrorCodeInvalidToken       ErrorCode = "SESSION_INVALID"
	ErrorCodeExpiredToken       ErrorCode = "SESSION_EXPIRED"
	ErrorCodeTokenNotFound      ErrorCode = "SESSION_MISSING"
	ErrorCodeForbidden          ErrorCode = "FORBIDDEN"

	// Request shape
	ErrorCodeValidationFailed ErrorCode = "INVALID_INPUT"
	ErrorCodeBadRequest       ErrorCode = "BAD_REQUEST"
	ErrorCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	ErrorCodeTooManyRequests  ErrorCode = "RATE_LIMITED"

	// Resources and wizard state
	ErrorCodeResourceNotFound ErrorCode = "NOT_FOUND"
	ErrorCodeConflict         ErrorCode = "CONFLICT"

	// Backend and this service
	ErrorCodeExternalServiceError ErrorCode = "BACKEND_ERROR"
	ErrorCodeServiceUnavailable   ErrorCode = "UNAVAILABLE"
	ErrorCodeInternalServer       ErrorCode = "INTERNAL"
)

// FieldProblem is one rejected input field.
type FieldProblem struct {
	Field   string `json:"field" example:"endDate"`
	Message string `json:"message" example:"End date must be after start date"`
}

// ErrorDetail is the error half of every failed API response. DebugInfo
// carries the internal error text and is never set in release mode.
type ErrorDetail struct {
	Code      ErrorCode      `json:"code" example:"INVALID_INPUT"`
	Message   string         `json:"message" example:"Title is required. Please provide a title for your media files."`
	Field     string         `json:"field,omitempty" example:"title"`
	Errors    []FieldProblem `json:"errors,omitempty"`
	Details   interface{}    `json:"details,omitempty"`
	DebugInfo string         `json:"debugInfo,omitempty"`
}

// ErrorResponse wraps an ErrorDetail.
type ErrorResponse struct {
	Success   bool         `json:"success" example:"false"`
	Error     *ErrorDetail `json:"error"`
	Timestamp time.Time    `json:"timestamp" example:"2025-04-23T12:01:05.123Z"`
}

func NewErrorDetail(code ErrorCode, message string) *ErrorDetail {
	return &ErrorDetail{Code: code, Message: message}
}

func (e *ErrorDetail) WithField(field string) *ErrorDetail {
	e.Field = field
	return e
}

func (e *ErrorDetail) WithDetails(details interface{}) *ErrorDetail {
	e.Details = details
	return e
}

// WithFieldProblems lists every rejected field, ordered by name.
func (e *ErrorDetail) WithFieldProblems(fields map[string]string) *ErrorDetail {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	e.Errors = make([]FieldProblem, 0, len(names))
	for _, name := range names {
		e.Errors = append(e.Errors, FieldProblem{Field: name, Message: fields[name]})
	}
	return e
}

func (e *ErrorDetail) WithDebugInfo(format string, args ...interface{}) *ErrorDetail {
	e.DebugInfo = fmt.Sprintf(format, args...)
	return e
}

func NewErrorResponse(errorDetail *ErrorDetail) *ErrorResponse {
	return &ErrorResponse{
		Success:   false,
		Error:     errorDetail,
		Timestamp: time.Now(),
	}
}
