package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jackc/pgx/v5"
)

// CourseHours is a workload catalog entry (e.g. 20h, 40h, 60h) selectable
// when issuing certificates. Inactive entries stay referenced by existing
// certificates but are hidden from new issues.
type CourseHours struct {
	ID        uuid.UUID
	Hours     int
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CourseHoursRepository persists the workload catalog.
type CourseHoursRepository struct {
	db DBTX
}

func NewCourseHoursRepository(db DBTX) *CourseHoursRepository {
	return &CourseHoursRepository{db: db}
}

const courseHoursColumns = `id, hours, active, created_at, updated_at`

func (r *CourseHoursRepository) Create(ctx context.Context, ch *CourseHours) error {
	if ch.ID == uuid.Nil {
		ch.ID = uuid.New()
	}
	now := time.Now()
	ch.CreatedAt = now
	ch.UpdatedAt = now

	_, err := r.db.Exec(ctx, `
		INSERT INTO course_hours (id, hours, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		ch.ID, ch.Hours, ch.Active, ch.CreatedAt, ch.UpdatedAt,
	)
	return wrapErr(err)
}

func (r *CourseHoursRepository) Update(ctx context.Context, ch *CourseHours) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE course_hours
		SET hours = $2, active = $3, updated_at = now()
		WHERE id = $1`,
		ch.ID, ch.Hours, ch.Active,
	)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CourseHoursRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM course_hours WHERE id = $1`, id)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CourseHoursRepository) GetByID(ctx context.Context, id uuid.UUID) (CourseHours, error) {
	row := r.db.QueryRow(ctx, `SELECT `+courseHoursColumns+` FROM course_hours WHERE id = $1`, id)
	return scanCourseHours(row)
}

func (r *CourseHoursRepository) List(ctx context.Context) ([]CourseHours, error) {
	return r.list(ctx, `SELECT `+courseHoursColumns+` FROM course_hours ORDER BY hours`)
}

// ListActive returns entries selectable for new certificates.
func (r *CourseHoursRepository) ListActive(ctx context.Context) ([]CourseHours, error) {
	return r.list(ctx, `SELECT `+courseHoursColumns+` FROM course_hours WHERE active ORDER BY hours`)
}

func (r *CourseHoursRepository) list(ctx context.Context, query string, args ...any) ([]CourseHours, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	var entries []CourseHours
	for rows.Next() {
		ch, err := scanCourseHours(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ch)
	}
	return entries, wrapErr(rows.Err())
}

func scanCourseHours(row pgx.Row) (CourseHours, error) {
	var ch CourseHours
	err := row.Scan(&ch.ID, &ch.Hours, &ch.Active, &ch.CreatedAt, &ch.UpdatedAt)
	if err != nil {
		return CourseHours{}, wrapErr(err)
	}
	return ch, nil
}
