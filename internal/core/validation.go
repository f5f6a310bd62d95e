package core

// validation.go provides structural validation for form records and signups.
//
// Records are checked against their FormDefinition: every required field must
// be present and non-empty. Unknown fields are dropped before validation so
// that clients cannot smuggle extra keys into the stored payload. There is no
// cross-field business validation.

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   string // Field key
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationErrors collects every problem found in one record.
type ValidationErrors []ValidationError

func (es ValidationErrors) Error() string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// IsValidationError reports whether err carries validation failures.
func IsValidationError(err error) bool {
	var one ValidationError
	var many ValidationErrors
	return errors.As(err, &many) || errors.As(err, &one)
}

// SanitizeFields keeps only the fields the definition knows about.
func SanitizeFields(def FormDefinition, in Fields) Fields {
	out := make(Fields, len(def.Fields))
	for _, f := range def.Fields {
		if v, ok := in[f.Key]; ok {
			out[f.Key] = v
		}
	}
	return out
}

// ValidateFields checks that every required field of def is present and
// non-empty in fields. Returns ValidationErrors listing all missing fields.
func ValidateFields(def FormDefinition, fields Fields) error {
	var errs ValidationErrors
	for _, f := range def.Fields {
		if !f.Required {
			continue
		}
		value := strings.TrimSpace(CellString(fields[f.Key]))
		if err := validate.Var(value, "required"); err != nil {
			errs = append(errs, ValidationError{
				Field:   f.Key,
				Value:   value,
				Message: "required field is empty",
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateUser checks signup data: identifier, email and alternative email.
func ValidateUser(u User) error {
	err := validate.Struct(u)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate user: %w", err)
	}

	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Value:   fmt.Sprint(fe.Value()),
			Message: tagMessage(fe.Tag()),
		})
	}
	return out
}

func tagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field is empty"
	case "email":
		return "invalid email address"
	case "max":
		return "value is too long"
	default:
		return "invalid value (" + tag + ")"
	}
}
