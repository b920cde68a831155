package experience

import (
	"errors"
	"strings"

	"github.com/mwork/experience-api/internal/pkg/validator"
)

var (
	// ErrExperienceNotFound is returned when experience is not found
	ErrExperienceNotFound = errors.New("experience not found")

	// ErrInvalidID is returned for identifiers that are not 24-char hex
	ErrInvalidID = errors.New("invalid experience id")

	// ErrDuplicateID is returned when the identifier is already taken
	ErrDuplicateID = errors.New("experience id already exists")

	// ErrExperienceConstraint is returned for other storage constraint violations
	ErrExperienceConstraint = errors.New("experience violates storage constraint")
)

// ValidationError lists every invalid field of a rejected input.
type ValidationError struct {
	Fields []validator.FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field is among the invalid fields.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Details returns the field errors in reporting order.
func (e *ValidationError) Details() []validator.FieldError {
	return e.Fields
}

// AsValidationError unwraps err into a *ValidationError.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
