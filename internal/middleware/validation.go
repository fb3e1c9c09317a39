package middleware

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"

	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/pkg/validation"
)

// BindJSON decodes the body into obj and runs the validate tags. On failure
// it writes a 400 and returns false.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").WithDetails(err.Error())
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return false
	}
	return validateBound(c, obj)
}

// BindForm is BindJSON for form and multipart bodies.
func BindForm(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBind(obj); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid form data").WithDetails(err.Error())
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return false
	}
	return validateBound(c, obj)
}

// BindQuery binds and validates query parameters.
func BindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid query parameters").WithDetails(err.Error())
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return false
	}
	return true
}

func validateBound(c *gin.Context, obj interface{}) bool {
	err := validateValue(reflect.ValueOf(obj))
	if err == nil {
		return true
	}
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, err.Error())
	var fe *validation.FieldError
	if errors.As(err, &fe) {
		errorDetail.WithField(fe.Field)
	}
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
	return false
}

// validateValue validates a struct, or each struct element of a slice body.
func validateValue(v reflect.Value) error {
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Struct:
		return validation.Default().Struct(v.Addr().Interface())
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := validateValue(v.Index(i)); err != nil {
				return err
			}
		}
	}
	return nil
}
