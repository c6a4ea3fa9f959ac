package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jackc/pgx/v5"
)

// Student is a course participant eligible for certificates.
type Student struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     string
	CPF       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StudentRepository persists students.
type StudentRepository struct {
	db DBTX
}

func NewStudentRepository(db DBTX) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `id, name, email, phone, cpf, created_at, updated_at`

func (r *StudentRepository) Create(ctx context.Context, s *Student) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now

	_, err := r.db.Exec(ctx, `
		INSERT INTO students (id, name, email, phone, cpf, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.Name, s.Email, s.Phone, s.CPF, s.CreatedAt, s.UpdatedAt,
	)
	return wrapErr(err)
}

func (r *StudentRepository) Update(ctx context.Context, s *Student) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE students
		SET name = $2, email = $3, phone = $4, cpf = $5, updated_at = now()
		WHERE id = $1`,
		s.ID, s.Name, s.Email, s.Phone, s.CPF,
	)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *StudentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *StudentRepository) GetByID(ctx context.Context, id uuid.UUID) (Student, error) {
	row := r.db.QueryRow(ctx, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id)
	return scanStudent(row)
}

func (r *StudentRepository) List(ctx context.Context) ([]Student, error) {
	rows, err := r.db.Query(ctx, `SELECT `+studentColumns+` FROM students ORDER BY name`)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	var students []Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, wrapErr(rows.Err())
}

func (r *StudentRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM students`).Scan(&n); err != nil {
		return 0, wrapErr(err)
	}
	return n, nil
}

func scanStudent(row pgx.Row) (Student, error) {
	var s Student
	err := row.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.CPF, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return Student{}, wrapErr(err)
	}
	return s, nil
}
