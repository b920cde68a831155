package experience

import (
	"time"

	"github.com/mwork/experience-api/internal/pkg/objectid"
	"github.com/mwork/experience-api/internal/pkg/validator"
)

// IDGenerator produces candidate record identifiers. Uniqueness is
// enforced by storage, not here.
type IDGenerator interface {
	NewID() string
}

// Clock supplies the current time. clockwork.Clock satisfies it.
type Clock interface {
	Now() time.Time
}

// Factory promotes validated input to stored records
type Factory struct {
	IDs   IDGenerator
	Clock Clock
}

// NewFactory creates record factory
func NewFactory(ids IDGenerator, clock Clock) Factory {
	return Factory{IDs: ids, Clock: clock}
}

// ToStored assigns a fresh identifier and stamps both timestamps with the same instant.
func (f Factory) ToStored(in CreateInput) Experience {
	return f.build(in, f.IDs.NewID())
}

// ToStoredWithID is ToStored with a caller-supplied identifier.
func (f Factory) ToStoredWithID(in CreateInput, id string) (Experience, error) {
	if err := validator.ValidateVar(id, "objectid"); err != nil {
		return Experience{}, &ValidationError{Fields: []validator.FieldError{{Field: "_id", Reason: "not a valid identifier"}}}
	}
	normalized, _ := objectid.Normalize(id)
	return f.build(in, normalized), nil
}

// Now returns the factory clock reading at storage precision
func (f Factory) Now() time.Time {
	return storageTime(f.Clock.Now())
}

func (f Factory) build(in CreateInput, id string) Experience {
	now := f.Now()
	return Experience{
		ID:               id,
		CreatedAt:        now,
		UpdatedAt:        now,
		Title:            in.Title,
		Company:          in.Company,
		Description:      in.Description,
		EmploymentType:   in.EmploymentType,
		Location:         nullString(in.Location),
		Lat:              nullFloat(in.Lat),
		Lon:              nullFloat(in.Lon),
		Responsibilities: stringArray(in.Responsibilities),
		Technologies:     stringArray(in.Technologies),
		StartDate:        storageTime(in.StartDate),
		EndDate:          nullTime(in.EndDate),
		IsCurrent:        in.IsCurrent,
	}
}
