package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jackc/pgx/v5"
)

// Course is a training offering, shown publicly once published.
type Course struct {
	ID          uuid.UUID
	TeacherID   uuid.UUID
	Title       string
	Description string
	Published   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CourseRepository persists courses.
type CourseRepository struct {
	db DBTX
}

func NewCourseRepository(db DBTX) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = `id, teacher_id, title, description, published, created_at, updated_at`

func (r *CourseRepository) Create(ctx context.Context, c *Course) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := r.db.Exec(ctx, `
		INSERT INTO courses (id, teacher_id, title, description, published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, nilUUID(c.TeacherID), c.Title, c.Description, c.Published, c.CreatedAt, c.UpdatedAt,
	)
	return wrapErr(err)
}

func (r *CourseRepository) Update(ctx context.Context, c *Course) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE courses
		SET teacher_id = $2, title = $3, description = $4, published = $5, updated_at = now()
		WHERE id = $1`,
		c.ID, nilUUID(c.TeacherID), c.Title, c.Description, c.Published,
	)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CourseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (Course, error) {
	row := r.db.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id)
	return scanCourse(row)
}

func (r *CourseRepository) List(ctx context.Context) ([]Course, error) {
	return r.list(ctx, `SELECT `+courseColumns+` FROM courses ORDER BY title`)
}

// ListPublished returns courses visible on the public site.
func (r *CourseRepository) ListPublished(ctx context.Context) ([]Course, error) {
	return r.list(ctx, `SELECT `+courseColumns+` FROM courses WHERE published ORDER BY title`)
}

func (r *CourseRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM courses`).Scan(&n); err != nil {
		return 0, wrapErr(err)
	}
	return n, nil
}

func (r *CourseRepository) list(ctx context.Context, query string, args ...any) ([]Course, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	var courses []Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, wrapErr(rows.Err())
}

func scanCourse(row pgx.Row) (Course, error) {
	var (
		c         Course
		teacherID *uuid.UUID
	)
	err := row.Scan(&c.ID, &teacherID, &c.Title, &c.Description, &c.Published, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Course{}, wrapErr(err)
	}
	if teacherID != nil {
		c.TeacherID = *teacherID
	}
	return c, nil
}

// nilUUID maps uuid.Nil to SQL NULL for optional foreign keys.
func nilUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
