package experience

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/mwork/experience-api/internal/pkg/validator"
)

const minimalCreate = `{"title":"Engineer","company":"Acme","description":"Build things","start_date":"2024-01-01T00:00:00"}`

func mustValidationError(t *testing.T, err error) *ValidationError {
	t.Helper()
	verr, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(verr.Fields) == 0 {
		t.Fatal("validation error without fields")
	}
	return verr
}

func TestValidateCreateAppliesDefaults(t *testing.T) {
	in, err := ValidateCreate([]byte(minimalCreate))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if in.Title != "Engineer" || in.Company != "Acme" || in.Description != "Build things" {
		t.Fatalf("unexpected text fields: %+v", in)
	}
	if in.Responsibilities == nil || len(in.Responsibilities) != 0 {
		t.Fatalf("expected empty responsibilities, got %#v", in.Responsibilities)
	}
	if in.Technologies == nil || len(in.Technologies) != 0 {
		t.Fatalf("expected empty technologies, got %#v", in.Technologies)
	}
	if in.EmploymentType != "Full-time" {
		t.Fatalf("expected default employment type, got %q", in.EmploymentType)
	}
	if in.IsCurrent {
		t.Fatal("expected is_current false")
	}
	if in.Location != nil || in.Lat != nil || in.Lon != nil || in.EndDate != nil {
		t.Fatalf("expected optional fields unset: %+v", in)
	}
	if want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC); !in.StartDate.Equal(want) || in.StartDate.Location() != time.UTC {
		t.Fatalf("unexpected start date %v", in.StartDate)
	}
}

func TestValidateCreateKeepsSuppliedValues(t *testing.T) {
	raw := `{
		"title": "Lead Engineer",
		"company": "Globex",
		"location": "Almaty",
		"lat": 43.238949,
		"lon": 76.889709,
		"description": "Owned the platform",
		"responsibilities": ["Design", "Review"],
		"technologies": ["Go", "PostgreSQL"],
		"start_date": "2021-03-01T09:30:00+06:00",
		"end_date": "2023-06-30",
		"employment_type": "Contract",
		"is_current": true,
		"unknown": "ignored"
	}`

	in, err := ValidateCreate([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if in.Location == nil || *in.Location != "Almaty" {
		t.Fatalf("unexpected location %v", in.Location)
	}
	if in.Lat == nil || *in.Lat != 43.238949 || in.Lon == nil || *in.Lon != 76.889709 {
		t.Fatalf("unexpected coordinates %v %v", in.Lat, in.Lon)
	}
	if !reflect.DeepEqual(in.Responsibilities, []string{"Design", "Review"}) {
		t.Fatalf("unexpected responsibilities %v", in.Responsibilities)
	}
	if !reflect.DeepEqual(in.Technologies, []string{"Go", "PostgreSQL"}) {
		t.Fatalf("unexpected technologies %v", in.Technologies)
	}
	if want := time.Date(2021, 3, 1, 3, 30, 0, 0, time.UTC); !in.StartDate.Equal(want) {
		t.Fatalf("unexpected start date %v", in.StartDate)
	}
	if in.EndDate == nil || !in.EndDate.Equal(time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end date %v", in.EndDate)
	}
	if in.EmploymentType != "Contract" || !in.IsCurrent {
		t.Fatalf("unexpected employment fields: %+v", in)
	}
}

func TestValidateCreateAllowsIndependentEndDateAndIsCurrent(t *testing.T) {
	raw := `{"title":"a","company":"b","description":"c","start_date":"2020-01-01","end_date":"2021-01-01","is_current":true}`
	if _, err := ValidateCreate([]byte(raw)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateCreateNullOptionalFieldsAreUnset(t *testing.T) {
	raw := `{"title":"a","company":"b","description":"c","start_date":"2020-01-01","location":null,"lat":null,"lon":null,"end_date":null}`
	in, err := ValidateCreate([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Location != nil || in.Lat != nil || in.Lon != nil || in.EndDate != nil {
		t.Fatalf("expected unset optional fields: %+v", in)
	}
}

func TestValidateCreateErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []validator.FieldError
	}{
		{
			name: "missing description",
			raw:  `{"title":"Engineer","company":"Acme","start_date":"2024-01-01T00:00:00"}`,
			want: []validator.FieldError{{Field: "description", Reason: "missing required field"}},
		},
		{
			name: "empty object reports every required field in order",
			raw:  `{}`,
			want: []validator.FieldError{
				{Field: "title", Reason: "missing required field"},
				{Field: "company", Reason: "missing required field"},
				{Field: "description", Reason: "missing required field"},
				{Field: "start_date", Reason: "missing required field"},
			},
		},
		{
			name: "empty title",
			raw:  `{"title":"","company":"Acme","description":"x","start_date":"2024-01-01"}`,
			want: []validator.FieldError{{Field: "title", Reason: "length below minimum (1)"}},
		},
		{
			name: "company too long",
			raw:  `{"title":"a","company":"` + strings.Repeat("c", 201) + `","description":"x","start_date":"2024-01-01"}`,
			want: []validator.FieldError{{Field: "company", Reason: "length above maximum (200)"}},
		},
		{
			name: "empty description",
			raw:  `{"title":"a","company":"b","description":"","start_date":"2024-01-01"}`,
			want: []validator.FieldError{{Field: "description", Reason: "length below minimum (1)"}},
		},
		{
			name: "null required field",
			raw:  `{"title":null,"company":"b","description":"x","start_date":"2024-01-01"}`,
			want: []validator.FieldError{{Field: "title", Reason: "must not be null"}},
		},
		{
			name: "wrong types",
			raw:  `{"title":1,"company":"b","lat":"north","description":"x","start_date":"2024-01-01","is_current":"yes"}`,
			want: []validator.FieldError{
				{Field: "title", Reason: "must be a string"},
				{Field: "lat", Reason: "must be a number"},
				{Field: "is_current", Reason: "must be a boolean"},
			},
		},
		{
			name: "list item paths",
			raw:  `{"title":"a","company":"b","description":"x","responsibilities":["ok",2,null],"technologies":"Go","start_date":"2024-01-01"}`,
			want: []validator.FieldError{
				{Field: "responsibilities[1]", Reason: "must be a string"},
				{Field: "responsibilities[2]", Reason: "must be a string"},
				{Field: "technologies", Reason: "must be an array of strings"},
			},
		},
		{
			name: "nul characters",
			raw:  `{"title":"a\u0000b","company":"b","description":"x","technologies":["Go","\u0000"],"start_date":"2024-01-01"}`,
			want: []validator.FieldError{
				{Field: "title", Reason: "must not contain NUL characters"},
				{Field: "technologies[1]", Reason: "must not contain NUL characters"},
			},
		},
		{
			name: "bad dates",
			raw:  `{"title":"a","company":"b","description":"x","start_date":"yesterday","end_date":42}`,
			want: []validator.FieldError{
				{Field: "start_date", Reason: "not a valid date-time"},
				{Field: "end_date", Reason: "not a valid date-time"},
			},
		},
		{
			name: "null defaulted field",
			raw:  `{"title":"a","company":"b","description":"x","start_date":"2024-01-01","employment_type":null}`,
			want: []validator.FieldError{{Field: "employment_type", Reason: "must not be null"}},
		},
		{
			name: "not an object",
			raw:  `["title"]`,
			want: []validator.FieldError{{Field: "body", Reason: "must be a JSON object"}},
		},
		{
			name: "malformed json",
			raw:  `{"title":`,
			want: []validator.FieldError{{Field: "body", Reason: "invalid JSON"}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateCreate([]byte(tc.raw))
			verr := mustValidationError(t, err)
			if !reflect.DeepEqual(verr.Fields, tc.want) {
				t.Fatalf("unexpected fields:\n got  %+v\n want %+v", verr.Fields, tc.want)
			}
		})
	}
}

func TestValidateCreateCountsCodePoints(t *testing.T) {
	title := strings.Repeat("ж", 200)
	raw := `{"title":"` + title + `","company":"b","description":"x","start_date":"2024-01-01"}`
	if _, err := ValidateCreate([]byte(raw)); err != nil {
		t.Fatalf("200 code points must be accepted: %v", err)
	}
}

func TestParseDateTimeForms(t *testing.T) {
	want := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	tests := []struct {
		in   string
		want time.Time
	}{
		{in: "2024-05-06T07:08:09Z", want: want},
		{in: "2024-05-06T10:08:09+03:00", want: want},
		{in: "2024-05-06T07:08:09", want: want},
		{in: "2024-05-06 07:08:09", want: want},
		{in: "2024-05-06T07:08:09.123456", want: want.Add(123456 * time.Microsecond)},
		{in: "2024-05-06", want: time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseDateTime(tc.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tc.want) || got.Location() != time.UTC {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}

	if _, err := ParseDateTime("06/05/2024"); err == nil {
		t.Fatal("expected error for unsupported layout")
	}
}

func TestValidateUpdateAbsentFieldsStayUnset(t *testing.T) {
	patch, err := ValidateUpdate([]byte(`{"location":"Remote"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(patch.Fields(), []string{"location"}) {
		t.Fatalf("unexpected fields %v", patch.Fields())
	}
	if patch.EmploymentType.IsSet() || patch.IsCurrent.IsSet() || patch.Responsibilities.IsSet() {
		t.Fatal("defaults must not be applied to a patch")
	}
}

func TestValidateUpdateEmpty(t *testing.T) {
	patch, err := ValidateUpdate([]byte(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !patch.IsEmpty() {
		t.Fatalf("expected empty patch, got %v", patch.Fields())
	}
}

func TestValidateUpdateNullHandling(t *testing.T) {
	patch, err := ValidateUpdate([]byte(`{"location":null,"lat":null,"lon":null,"end_date":null}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !patch.Location.IsNull() || !patch.Lat.IsNull() || !patch.Lon.IsNull() || !patch.EndDate.IsNull() {
		t.Fatal("expected nullable fields to be set to null")
	}

	_, err = ValidateUpdate([]byte(`{"title":null,"is_current":null,"technologies":null}`))
	verr := mustValidationError(t, err)
	want := []validator.FieldError{
		{Field: "title", Reason: "must not be null"},
		{Field: "technologies", Reason: "must not be null"},
		{Field: "is_current", Reason: "must not be null"},
	}
	if !reflect.DeepEqual(verr.Fields, want) {
		t.Fatalf("unexpected fields %+v", verr.Fields)
	}
}

func TestValidateUpdateChecksPresentValues(t *testing.T) {
	_, err := ValidateUpdate([]byte(`{"title":"","company":"` + strings.Repeat("x", 201) + `","start_date":"soon"}`))
	verr := mustValidationError(t, err)
	want := []validator.FieldError{
		{Field: "title", Reason: "length below minimum (1)"},
		{Field: "company", Reason: "length above maximum (200)"},
		{Field: "start_date", Reason: "not a valid date-time"},
	}
	if !reflect.DeepEqual(verr.Fields, want) {
		t.Fatalf("unexpected fields %+v", verr.Fields)
	}
}

func TestApplyTouchesOnlySuppliedFields(t *testing.T) {
	stored := sampleStored(t)

	patch, err := ValidateUpdate([]byte(`{"location":"Remote"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated := patch.Apply(stored)

	if !updated.Location.Valid || updated.Location.String != "Remote" {
		t.Fatalf("location not applied: %+v", updated.Location)
	}
	updated.Location = stored.Location
	if !reflect.DeepEqual(updated, stored) {
		t.Fatalf("apply changed other fields:\n got  %+v\n want %+v", updated, stored)
	}
}

func TestApplyClearsNullableFields(t *testing.T) {
	stored := sampleStored(t)

	patch, err := ValidateUpdate([]byte(`{"lat":null,"end_date":null,"is_current":true}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated := patch.Apply(stored)
	if updated.Lat.Valid || updated.EndDate.Valid {
		t.Fatalf("expected lat and end_date cleared: %+v", updated)
	}
	if !updated.Lon.Valid || !updated.IsCurrent {
		t.Fatalf("unexpected result: %+v", updated)
	}
}
