package httpapi

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Request bodies. Pointer fields make "required" mean present, so an empty
// question still reaches the service and is reported after the document check.
type (
	askRequest struct {
		DocumentID *string `json:"document_id" validate:"required"`
		Question   *string `json:"question" validate:"required"`
	}

	extractRequest struct {
		DocumentID *string `json:"document_id" validate:"required"`
	}
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationError maps JSON field names to the rule they failed.
type validationError struct {
	fields map[string]string
}

func (e *validationError) Error() string {
	names := make([]string, 0, len(e.fields))
	for name := range e.fields {
		names = append(names, name)
	}
	slices.Sort(names)
	return "invalid request: missing or invalid " + strings.Join(names, ", ")
}

// validateRequest runs struct validation and flattens the failures.
func validateRequest(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}
	fields := make(map[string]string, len(errs))
	for _, e := range errs {
		fields[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
	}
	return &validationError{fields: fields}
}
