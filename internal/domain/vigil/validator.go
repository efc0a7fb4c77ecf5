package vigil

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	// Keep in sync with the validate tags on Fields.
	MaxLocationLen    = 200
	MaxDescriptionLen = 2000
	MaxContactLen     = 200
	MaxOrganizerLen   = 100

	zipcodeRule = "len=5,number"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names so messages match the request body
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// ValidZipcode reports whether z is a 5-digit numeric zipcode.
func ValidZipcode(z string) bool {
	return validate.Var(z, zipcodeRule) == nil
}

// Validate checks the fields before a vigil is accepted.
func (f Fields) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidData, describe(fieldErrs[0]))
	}
	return fmt.Errorf("%w: %v", ErrInvalidData, err)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fe.Field() + " is required"
	case "len", "number":
		return fe.Field() + " must be 5 digits"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must match %s", fe.Field(), fe.Param())
	default:
		return fe.Field() + " is invalid"
	}
}
