package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mwork/experience-api/internal/pkg/objectid"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	// 24-char hex record identifier
	validate.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return objectid.Valid(fl.Field().String())
	})
}

// FieldError describes one invalid field. Field is a JSON path such as
// "title" or "technologies[2]".
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Validate validates a struct and returns one error per invalid field,
// in struct field order.
func Validate(s interface{}) []FieldError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "body", Reason: "Invalid value"}}
	}

	errors := make([]FieldError, 0, len(verrs))
	for _, err := range verrs {
		errors = append(errors, FieldError{Field: err.Field(), Reason: message(err)})
	}

	return errors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}

func message(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "missing required field"
	case "min":
		if err.Kind() == reflect.String || err.Kind() == reflect.Slice {
			return "length below minimum (" + err.Param() + ")"
		}
		return "value below minimum (" + err.Param() + ")"
	case "max":
		if err.Kind() == reflect.String || err.Kind() == reflect.Slice {
			return "length above maximum (" + err.Param() + ")"
		}
		return "value above maximum (" + err.Param() + ")"
	case "objectid":
		return "not a valid identifier"
	default:
		return "Invalid value"
	}
}
