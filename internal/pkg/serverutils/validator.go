package serverutils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"lumina-be/internal/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their wire name.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// ValidateRequest checks the struct tags of req and converts failures into
// an *apperror.ValidationError keyed by JSON field name.
func ValidateRequest(req interface{}) error {
	err := getValidator().Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &apperror.ValidationError{}
	for _, fe := range verrs {
		out.Add(fe.Field(), codeFor(fe), messageFor(fe))
	}
	return out.OrNil()
}

func codeFor(fe validator.FieldError) apperror.Code {
	if fe.Tag() == "required" {
		return apperror.FieldRequired
	}
	return apperror.FieldInvalid
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "eqfield":
		return "Passwords do not match."
	default:
		return "Invalid value."
	}
}
