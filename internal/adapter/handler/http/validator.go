package http

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	domainErrors "github.com/nexusmerchants/orderforms-stripe/internal/domain/errors"
)

// RequestValidator plugs go-playground/validator into echo's c.Validate
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator reports field errors under their JSON names
func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("param"), ",", 2)[0]
		}
		return name
	})
	return &RequestValidator{validate: v}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	err := rv.validate.Struct(i)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return domainErrors.NewValidationError("Invalid request")
	}

	// 첫 번째 필드 에러만 노출
	fe := validationErrors[0]
	return domainErrors.NewValidationError(fe.Field() + ": " + validationMessage(fe))
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "max":
		return "Must be at most " + e.Param() + " characters"
	case "startswith":
		return "Must start with " + e.Param()
	default:
		return "Invalid value"
	}
}
