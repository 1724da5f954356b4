package handlers

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	pkghttp "github.com/inkwell-cms/inkwell/pkg/http"
)

// Global validator instance (reused across all handlers)
var validate = validator.New()

// ValidateRequest validates a request struct using go-playground/validator.
// Returns the field-error list for the 400 response body, or nil when valid.
func ValidateRequest(req interface{}) []pkghttp.FieldError {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return []pkghttp.FieldError{{Field: "request", Message: "invalid request"}}
	}

	fields := make([]pkghttp.FieldError, 0, len(ve))
	for _, fieldError := range ve {
		fields = append(fields, pkghttp.FieldError{
			Field:   fieldError.Field(),
			Message: formatValidationError(fieldError),
		})
	}
	return fields
}

// formatValidationError converts a validator FieldError to a user-friendly message
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must have a minimum of %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must have a maximum of %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}
