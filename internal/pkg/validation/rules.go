package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// E.164: a plus, a non-zero digit, then up to 14 more digits.
	WhatsAppPhonePattern = `^\+[1-9]\d{1,14}$`

	// Provider account IDs and the whatsapp: sender address.
	TwilioSIDPattern      = `^AC[a-f0-9]{32}$`
	WhatsAppSenderPattern = `^whatsapp:\+\d{10,15}$`

	MessageBodyMaxLength = 4096
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	WhatsAppPhone  *regexp.Regexp
	TwilioSID      *regexp.Regexp
	WhatsAppSender *regexp.Regexp
}{
	WhatsAppPhone:  regexp.MustCompile(WhatsAppPhonePattern),
	TwilioSID:      regexp.MustCompile(TwilioSIDPattern),
	WhatsAppSender: regexp.MustCompile(WhatsAppSenderPattern),
}

// Validator wraps a validator instance with the custom tags registered.
type Validator struct {
	v *validator.Validate
}

var defaultValidator = New()

// New creates a Validator with the custom tags and JSON field names
// in error messages.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("whatsapp_phone", func(fl validator.FieldLevel) bool {
		return IsValidWhatsAppPhone(fl.Field().String())
	})
	_ = v.RegisterValidation("twilio_sid", func(fl validator.FieldLevel) bool {
		return CompiledPatterns.TwilioSID.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("whatsapp_sender", func(fl validator.FieldLevel) bool {
		return CompiledPatterns.WhatsAppSender.MatchString(fl.Field().String())
	})
	return &Validator{v: v}
}

// Default returns the shared Validator.
func Default() *Validator {
	return defaultValidator
}

// Struct validates s and returns the first failure as a readable message.
func (v *Validator) Struct(s interface{}) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &FieldError{Field: verrs[0].Field(), Message: FormatFieldError(verrs[0])}
	}
	return err
}

// FieldError is a single failed rule.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

// IsValidWhatsAppPhone reports whether phone is an E.164 number.
func IsValidWhatsAppPhone(phone string) bool {
	return CompiledPatterns.WhatsAppPhone.MatchString(phone)
}

// FormatFieldError creates a human-readable validation error message
func FormatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_if":
		return e.Field() + " is required"
	case "min":
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)", e.Field(), e.Param())
		}
		return e.Field() + " must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at most %s item(s)", e.Field(), e.Param())
		}
		return e.Field() + " must be at most " + e.Param() + " characters"
	case "email":
		return e.Field() + " must be a valid email address"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "whatsapp_phone":
		return fmt.Sprintf("Invalid phone number format: %v", e.Value())
	case "twilio_sid":
		return "Invalid Account SID format"
	case "whatsapp_sender":
		return "Invalid WhatsApp number format (e.g., whatsapp:+1234567890)"
	case "url":
		return e.Field() + " must be a valid URL"
	case "eq":
		return e.Field() + " must be confirmed"
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
