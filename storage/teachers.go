package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jackc/pgx/v5"
)

// Teacher is an instructor assigned to courses.
type Teacher struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     string
	Specialty string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TeacherRepository persists teachers.
type TeacherRepository struct {
	db DBTX
}

func NewTeacherRepository(db DBTX) *TeacherRepository {
	return &TeacherRepository{db: db}
}

const teacherColumns = `id, name, email, phone, specialty, created_at, updated_at`

func (r *TeacherRepository) Create(ctx context.Context, t *Teacher) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := r.db.Exec(ctx, `
		INSERT INTO teachers (id, name, email, phone, specialty, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.Name, t.Email, t.Phone, t.Specialty, t.CreatedAt, t.UpdatedAt,
	)
	return wrapErr(err)
}

func (r *TeacherRepository) Update(ctx context.Context, t *Teacher) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE teachers
		SET name = $2, email = $3, phone = $4, specialty = $5, updated_at = now()
		WHERE id = $1`,
		t.ID, t.Name, t.Email, t.Phone, t.Specialty,
	)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TeacherRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM teachers WHERE id = $1`, id)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TeacherRepository) GetByID(ctx context.Context, id uuid.UUID) (Teacher, error) {
	row := r.db.QueryRow(ctx, `SELECT `+teacherColumns+` FROM teachers WHERE id = $1`, id)
	return scanTeacher(row)
}

func (r *TeacherRepository) List(ctx context.Context) ([]Teacher, error) {
	rows, err := r.db.Query(ctx, `SELECT `+teacherColumns+` FROM teachers ORDER BY name`)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	var teachers []Teacher
	for rows.Next() {
		t, err := scanTeacher(rows)
		if err != nil {
			return nil, err
		}
		teachers = append(teachers, t)
	}
	return teachers, wrapErr(rows.Err())
}

func (r *TeacherRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM teachers`).Scan(&n); err != nil {
		return 0, wrapErr(err)
	}
	return n, nil
}

func scanTeacher(row pgx.Row) (Teacher, error) {
	var t Teacher
	err := row.Scan(&t.ID, &t.Name, &t.Email, &t.Phone, &t.Specialty, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return Teacher{}, wrapErr(err)
	}
	return t, nil
}
