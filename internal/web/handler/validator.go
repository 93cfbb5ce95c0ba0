package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type (
	// ErrorResponse represents a validation error response.
	ErrorResponse struct {
		FailedField string      `json:"field"`
		Tag         string      `json:"tag"`
		Param       string      `json:"param,omitempty"`
		Value       interface{} `json:"-"`
	}

	// XValidator validates form and JSON input structs.
	XValidator struct {
		validator *validator.Validate
	}
)

// Validator is the shared input validator.
var Validator = XValidator{validator: validator.New()} //nolint:gochecknoglobals

// Validate performs validation on the provided data and returns a slice of ErrorResponse.
func (v XValidator) Validate(data interface{}) []ErrorResponse {
	err := v.validator.Struct(data)

	return ValidationErrors(err)
}

// ValidationErrors converts validator errors; other errors and nil yield nil.
func ValidationErrors(err error) []ErrorResponse {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return nil
	}

	out := make([]ErrorResponse, 0, len(errs))

	for _, fe := range errs {
		out = append(out, ErrorResponse{
			FailedField: fe.Namespace(),
			Tag:         fe.Tag(),
			Param:       fe.Param(),
			Value:       fe.Value(),
		})
	}

	return out
}

// ValidationMessage joins validation errors into one line for display.
func ValidationMessage(errs []ErrorResponse) string {
	parts := make([]string, 0, len(errs))

	for _, e := range errs {
		field := e.FailedField
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}

		switch e.Tag {
		case "required":
			parts = append(parts, field+" is required")
		case "min", "max", "len", "gte", "lte":
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", field, e.Tag, e.Param))
		default:
			parts = append(parts, fmt.Sprintf("%s is not a valid %s", field, e.Tag))
		}
	}

	return strings.Join(parts, "; ")
}
