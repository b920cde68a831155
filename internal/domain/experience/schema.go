package experience

import (
	"time"

	"github.com/mwork/experience-api/internal/pkg/optional"
	"github.com/mwork/experience-api/internal/pkg/validator"
)

// CreateInput is a fully validated new record with defaults applied.
// Build it with ValidateCreate.
type CreateInput struct {
	Title            string     `json:"title" validate:"min=1,max=200"`
	Company          string     `json:"company" validate:"min=1,max=200"`
	Location         *string    `json:"location"`
	Lat              *float64   `json:"lat"`
	Lon              *float64   `json:"lon"`
	Description      string     `json:"description" validate:"min=1"`
	Responsibilities []string   `json:"responsibilities"`
	Technologies     []string   `json:"technologies"`
	StartDate        time.Time  `json:"start_date"`
	EndDate          *time.Time `json:"end_date"`
	EmploymentType   string     `json:"employment_type"`
	IsCurrent        bool       `json:"is_current"`
}

// UpdateInput is a validated sparse patch. Unset fields leave the stored
// record unchanged; nullable fields may be set to null to clear them.
type UpdateInput struct {
	Title            optional.Value[string]
	Company          optional.Value[string]
	Location         optional.Value[string]
	Lat              optional.Value[float64]
	Lon              optional.Value[float64]
	Description      optional.Value[string]
	Responsibilities optional.Value[[]string]
	Technologies     optional.Value[[]string]
	StartDate        optional.Value[time.Time]
	EndDate          optional.Value[time.Time]
	EmploymentType   optional.Value[string]
	IsCurrent        optional.Value[bool]
}

// updateRules carries the length-checked fields of an UpdateInput.
// Nil pointers are unset and skip validation.
type updateRules struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Company     *string `json:"company" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,min=1"`
}

// ValidateCreate validates a JSON object for a new record. On failure the
// error is a *ValidationError naming every invalid field.
func ValidateCreate(raw []byte) (CreateInput, error) {
	d, err := newDecoder(raw)
	if err != nil {
		return CreateInput{}, err
	}

	in := CreateInput{
		Title:            required(d, fieldTitle, parseString),
		Company:          required(d, fieldCompany, parseString),
		Location:         nullable(d, fieldLocation, parseString).Ptr(),
		Lat:              nullable(d, fieldLat, parseNumber).Ptr(),
		Lon:              nullable(d, fieldLon, parseNumber).Ptr(),
		Description:      required(d, fieldDescription, parseString),
		Responsibilities: []string{},
		Technologies:     []string{},
		StartDate:        required(d, fieldStartDate, parseDateTimeField),
		EndDate:          nullable(d, fieldEndDate, parseDateTimeField).Ptr(),
		EmploymentType:   DefaultEmploymentType,
	}

	if v, ok := nonNull(d, fieldResponsibilities, parseStrings).Get(); ok {
		in.Responsibilities = v
	}
	if v, ok := nonNull(d, fieldTechnologies, parseStrings).Get(); ok {
		in.Technologies = v
	}
	if v, ok := nonNull(d, fieldEmploymentType, parseString).Get(); ok {
		in.EmploymentType = v
	}
	if v, ok := nonNull(d, fieldIsCurrent, parseBool).Get(); ok {
		in.IsCurrent = v
	}

	d.merge(validator.Validate(&in))
	if err := d.err(); err != nil {
		return CreateInput{}, err
	}
	return in, nil
}

// ValidateUpdate validates a JSON object holding a partial update. Absent
// keys stay unset; present keys get the same checks as on create.
func ValidateUpdate(raw []byte) (UpdateInput, error) {
	d, err := newDecoder(raw)
	if err != nil {
		return UpdateInput{}, err
	}

	in := UpdateInput{
		Title:            nonNull(d, fieldTitle, parseString),
		Company:          nonNull(d, fieldCompany, parseString),
		Location:         nullable(d, fieldLocation, parseString),
		Lat:              nullable(d, fieldLat, parseNumber),
		Lon:              nullable(d, fieldLon, parseNumber),
		Description:      nonNull(d, fieldDescription, parseString),
		Responsibilities: nonNull(d, fieldResponsibilities, parseStrings),
		Technologies:     nonNull(d, fieldTechnologies, parseStrings),
		StartDate:        nonNull(d, fieldStartDate, parseDateTimeField),
		EndDate:          nullable(d, fieldEndDate, parseDateTimeField),
		EmploymentType:   nonNull(d, fieldEmploymentType, parseString),
		IsCurrent:        nonNull(d, fieldIsCurrent, parseBool),
	}

	d.merge(validator.Validate(in.rules()))
	if err := d.err(); err != nil {
		return UpdateInput{}, err
	}
	return in, nil
}

func (in UpdateInput) rules() *updateRules {
	return &updateRules{
		Title:       in.Title.Ptr(),
		Company:     in.Company.Ptr(),
		Description: in.Description.Ptr(),
	}
}

// Fields returns the JSON names of the supplied fields.
func (in UpdateInput) Fields() []string {
	set := map[string]bool{
		fieldTitle:            in.Title.IsSet(),
		fieldCompany:          in.Company.IsSet(),
		fieldLocation:         in.Location.IsSet(),
		fieldLat:              in.Lat.IsSet(),
		fieldLon:              in.Lon.IsSet(),
		fieldDescription:      in.Description.IsSet(),
		fieldResponsibilities: in.Responsibilities.IsSet(),
		fieldTechnologies:     in.Technologies.IsSet(),
		fieldStartDate:        in.StartDate.IsSet(),
		fieldEndDate:          in.EndDate.IsSet(),
		fieldEmploymentType:   in.EmploymentType.IsSet(),
		fieldIsCurrent:        in.IsCurrent.IsSet(),
	}

	var fields []string
	for _, name := range fieldOrder {
		if set[name] {
			fields = append(fields, name)
		}
	}
	return fields
}

// IsEmpty reports whether no field was supplied.
func (in UpdateInput) IsEmpty() bool {
	return len(in.Fields()) == 0
}

// Apply returns e with the supplied fields replaced. Timestamps and the
// identifier are never touched.
func (in UpdateInput) Apply(e Experience) Experience {
	if v, ok := in.Title.Get(); ok {
		e.Title = v
	}
	if v, ok := in.Company.Get(); ok {
		e.Company = v
	}
	if in.Location.IsSet() {
		e.Location = nullString(in.Location.Ptr())
	}
	if in.Lat.IsSet() {
		e.Lat = nullFloat(in.Lat.Ptr())
	}
	if in.Lon.IsSet() {
		e.Lon = nullFloat(in.Lon.Ptr())
	}
	if v, ok := in.Description.Get(); ok {
		e.Description = v
	}
	if v, ok := in.Responsibilities.Get(); ok {
		e.Responsibilities = stringArray(v)
	}
	if v, ok := in.Technologies.Get(); ok {
		e.Technologies = stringArray(v)
	}
	if v, ok := in.StartDate.Get(); ok {
		e.StartDate = storageTime(v)
	}
	if in.EndDate.IsSet() {
		e.EndDate = nullTime(in.EndDate.Ptr())
	}
	if v, ok := in.EmploymentType.Get(); ok {
		e.EmploymentType = v
	}
	if v, ok := in.IsCurrent.Get(); ok {
		e.IsCurrent = v
	}
	return e
}
