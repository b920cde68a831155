package experience

import (
	"fmt"
	"time"

	"github.com/mwork/experience-api/internal/pkg/objectid"
)

// Response is the wire form of an Experience
type Response struct {
	ID               string   `json:"_id"`
	Title            string   `json:"title"`
	Company          string   `json:"company"`
	Location         *string  `json:"location"`
	Lat              *float64 `json:"lat"`
	Lon              *float64 `json:"lon"`
	Description      string   `json:"description"`
	Responsibilities []string `json:"responsibilities"`
	Technologies     []string `json:"technologies"`
	StartDate        string   `json:"start_date"`
	EndDate          *string  `json:"end_date"`
	EmploymentType   string   `json:"employment_type"`
	IsCurrent        bool     `json:"is_current"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

// FormatDateTime renders t as RFC 3339 in UTC
func FormatDateTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// Serialize converts a stored record to its wire form
func Serialize(e Experience) Response {
	resp := Response{
		ID:               e.ID,
		Title:            e.Title,
		Company:          e.Company,
		Description:      e.Description,
		Responsibilities: append([]string{}, e.Responsibilities...),
		Technologies:     append([]string{}, e.Technologies...),
		StartDate:        FormatDateTime(e.StartDate),
		EmploymentType:   e.EmploymentType,
		IsCurrent:        e.IsCurrent,
		CreatedAt:        FormatDateTime(e.CreatedAt),
		UpdatedAt:        FormatDateTime(e.UpdatedAt),
	}

	if e.Location.Valid {
		resp.Location = &e.Location.String
	}
	if e.Lat.Valid {
		resp.Lat = &e.Lat.Float64
	}
	if e.Lon.Valid {
		resp.Lon = &e.Lon.Float64
	}
	if e.EndDate.Valid {
		end := FormatDateTime(e.EndDate.Time)
		resp.EndDate = &end
	}

	return resp
}

// SerializeList converts stored records to wire form
func SerializeList(items []*Experience) []Response {
	out := make([]Response, 0, len(items))
	for _, e := range items {
		out = append(out, Serialize(*e))
	}
	return out
}

// Deserialize is the inverse of Serialize
func Deserialize(r Response) (Experience, error) {
	id, err := objectid.Normalize(r.ID)
	if err != nil {
		return Experience{}, fmt.Errorf("%w: %q", ErrInvalidID, r.ID)
	}

	start, err := ParseDateTime(r.StartDate)
	if err != nil {
		return Experience{}, fmt.Errorf("start_date: %w", err)
	}
	created, err := ParseDateTime(r.CreatedAt)
	if err != nil {
		return Experience{}, fmt.Errorf("created_at: %w", err)
	}
	updated, err := ParseDateTime(r.UpdatedAt)
	if err != nil {
		return Experience{}, fmt.Errorf("updated_at: %w", err)
	}

	e := Experience{
		ID:               id,
		CreatedAt:        created,
		UpdatedAt:        updated,
		Title:            r.Title,
		Company:          r.Company,
		Description:      r.Description,
		EmploymentType:   r.EmploymentType,
		Location:         nullString(r.Location),
		Lat:              nullFloat(r.Lat),
		Lon:              nullFloat(r.Lon),
		Responsibilities: stringArray(r.Responsibilities),
		Technologies:     stringArray(r.Technologies),
		StartDate:        start,
		IsCurrent:        r.IsCurrent,
	}

	if r.EndDate != nil {
		end, err := ParseDateTime(*r.EndDate)
		if err != nil {
			return Experience{}, fmt.Errorf("end_date: %w", err)
		}
		e.EndDate = nullTime(&end)
	}

	return e, nil
}
