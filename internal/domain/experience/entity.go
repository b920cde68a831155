package experience

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// DefaultEmploymentType is used when a new record omits employment_type
const DefaultEmploymentType = "Full-time"

// Experience is the stored form of one employment period (matches experiences table).
// A null EndDate means the position is current; IsCurrent is an independent flag.
type Experience struct {
	ID        string    `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	// Position
	Title          string `db:"title"`
	Company        string `db:"company"`
	Description    string `db:"description"`
	EmploymentType string `db:"employment_type"`

	// Location (coordinates are not range-checked)
	Location sql.NullString  `db:"location"`
	Lat      sql.NullFloat64 `db:"lat"`
	Lon      sql.NullFloat64 `db:"lon"`

	// text[] columns
	Responsibilities pq.StringArray `db:"responsibilities"`
	Technologies     pq.StringArray `db:"technologies"`

	// Period
	StartDate time.Time    `db:"start_date"`
	EndDate   sql.NullTime `db:"end_date"`
	IsCurrent bool         `db:"is_current"`
}

// HasCoordinates reports whether both lat and lon are set
func (e *Experience) HasCoordinates() bool {
	return e.Lat.Valid && e.Lon.Valid
}

// storagePrecision is the resolution of timestamptz columns
const storagePrecision = time.Microsecond

// storageTime normalizes t to UTC at storage precision so a record reads
// back from Postgres exactly as it was built.
func storageTime(t time.Time) time.Time {
	return t.UTC().Truncate(storagePrecision)
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func nullTime(p *time.Time) sql.NullTime {
	if p == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: storageTime(*p), Valid: true}
}

func stringArray(items []string) pq.StringArray {
	out := make(pq.StringArray, len(items))
	copy(out, items)
	return out
}
