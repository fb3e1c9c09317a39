package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrInvalidFormat      = errors.New("invalid token format")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
	ErrMethodNotAllowed = errors.New("method not allowed")

	// Upstream errors
	ErrUpstream            = errors.New("backend request failed")
	ErrUpstreamUnavailable = errors.New("backend unavailable")
	ErrNotConfigured       = errors.New("API base URL not configured")

	// Local store
	ErrStoreDisabled = errors.New("campaign store is not configured")
)

// Campaign errors
var (
	ErrCampaignNotFound    = errors.New("campaign not found")
	ErrStepNotAccessible   = errors.New("wizard step is not accessible yet")
	ErrCampaignNotEditable = errors.New("campaign can no longer be edited")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewValidationError wraps ErrValidationFailed with a message meant for the user.
func NewValidationError(field, message string) *CustomError {
	e := &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
	if field != "" {
		e.Details = map[string]interface{}{"field": field}
	}
	return e
}

// NewFieldsError reports several invalid fields at once; message summarizes
// them for callers that show a single line.
func NewFieldsError(message string, fields map[string]string) *CustomError {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
		Details: map[string]interface{}{"fields": fields},
	}
}

// FieldMessages returns the per-field messages attached by NewFieldsError.
func FieldMessages(err error) map[string]string {
	var ce *CustomError
	if !errors.As(err, &ce) {
		return nil
	}
	fields, _ := ce.Details["fields"].(map[string]string)
	return fields
}

// UserMessage returns the message of the outermost CustomError, if any.
func UserMessage(err error) (string, bool) {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message, true
	}
	return "", false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}
