package experience

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Pagination represents pagination params
type Pagination struct {
	Page  int
	Limit int
}

// Offset returns the row offset for the page
func (p *Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Repository defines experience data access interface
type Repository interface {
	Create(ctx context.Context, exp *Experience) error
	GetByID(ctx context.Context, id string) (*Experience, error)
	List(ctx context.Context, pagination *Pagination) ([]*Experience, int, error)
	ListAll(ctx context.Context) ([]*Experience, error)
	Update(ctx context.Context, exp *Experience, fields []string) error
	Delete(ctx context.Context, id string) error
}

const selectColumns = `id, title, company, location, lat, lon, description,
	responsibilities, technologies, start_date, end_date, employment_type,
	is_current, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

// NewRepository creates experience repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, exp *Experience) error {
	query := `
		INSERT INTO experiences (
			id, title, company, location, lat, lon, description,
			responsibilities, technologies, start_date, end_date, employment_type,
			is_current, created_at, updated_at
		) VALUES (
			:id, :title, :company, :location, :lat, :lon, :description,
			:responsibilities, :technologies, :start_date, :end_date, :employment_type,
			:is_current, :created_at, :updated_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, exp); err != nil {
		return mapDBError(err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Experience, error) {
	query := `SELECT ` + selectColumns + ` FROM experiences WHERE id = $1`

	var exp Experience
	err := r.db.GetContext(ctx, &exp, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &exp, nil
}

func (r *repository) List(ctx context.Context, pagination *Pagination) ([]*Experience, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM experiences`); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + selectColumns + ` FROM experiences
		ORDER BY start_date DESC, created_at DESC
		LIMIT $1 OFFSET $2`

	var items []*Experience
	if err := r.db.SelectContext(ctx, &items, query, pagination.Limit, pagination.Offset()); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repository) ListAll(ctx context.Context) ([]*Experience, error) {
	query := `SELECT ` + selectColumns + ` FROM experiences ORDER BY start_date DESC, created_at DESC`

	var items []*Experience
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, err
	}
	return items, nil
}

// updatableColumns maps JSON field names to columns that a patch may set
var updatableColumns = map[string]string{
	fieldTitle:            "title",
	fieldCompany:          "company",
	fieldLocation:         "location",
	fieldLat:              "lat",
	fieldLon:              "lon",
	fieldDescription:      "description",
	fieldResponsibilities: "responsibilities",
	fieldTechnologies:     "technologies",
	fieldStartDate:        "start_date",
	fieldEndDate:          "end_date",
	fieldEmploymentType:   "employment_type",
	fieldIsCurrent:        "is_current",
}

// updateQuery builds an UPDATE that sets only the given fields plus updated_at.
func updateQuery(fields []string) (string, error) {
	sets := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		col, ok := updatableColumns[f]
		if !ok {
			return "", fmt.Errorf("unknown experience field %q", f)
		}
		sets = append(sets, col+" = :"+col)
	}
	sets = append(sets, "updated_at = :updated_at")
	return "UPDATE experiences SET " + strings.Join(sets, ", ") + " WHERE id = :id", nil
}

// Update writes the listed fields of exp. The caller sets UpdatedAt.
func (r *repository) Update(ctx context.Context, exp *Experience, fields []string) error {
	query, err := updateQuery(fields)
	if err != nil {
		return err
	}

	result, err := r.db.NamedExecContext(ctx, query, exp)
	if err != nil {
		return mapDBError(err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrExperienceNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM experiences WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrExperienceNotFound
	}
	return nil
}

func mapDBError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case "23505":
		return fmt.Errorf("%w: %w", ErrDuplicateID, err)
	case "23502", "23514", "22021", "22P05":
		return fmt.Errorf("%w: %w", ErrExperienceConstraint, err)
	default:
		return err
	}
}
