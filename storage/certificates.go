package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jackc/pgx/v5"
)

// Certificate records a completion issued to a student, verifiable publicly
// by its code.
type Certificate struct {
	ID            uuid.UUID
	Code          string
	StudentID     uuid.UUID
	CourseID      uuid.UUID
	CourseHoursID uuid.UUID
	DriveFileID   string
	DriveLink     string
	IssuedAt      time.Time
	CreatedAt     time.Time
}

// CertificateView joins the names needed to render a certificate without
// extra queries.
type CertificateView struct {
	Certificate
	StudentName string
	CourseTitle string
	Hours       int
}

// CertificateRepository persists issued certificates.
type CertificateRepository struct {
	db DBTX
}

func NewCertificateRepository(db DBTX) *CertificateRepository {
	return &CertificateRepository{db: db}
}

func (r *CertificateRepository) Create(ctx context.Context, c *Certificate) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now()
	if c.IssuedAt.IsZero() {
		c.IssuedAt = now
	}
	c.CreatedAt = now

	_, err := r.db.Exec(ctx, `
		INSERT INTO certificates (id, code, student_id, course_id, course_hours_id,
			drive_file_id, drive_link, issued_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.Code, c.StudentID, c.CourseID, c.CourseHoursID,
		c.DriveFileID, c.DriveLink, c.IssuedAt, c.CreatedAt,
	)
	return wrapErr(err)
}

// SetDriveFile records the uploaded artifact after a successful Drive upload.
func (r *CertificateRepository) SetDriveFile(ctx context.Context, id uuid.UUID, fileID, link string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE certificates SET drive_file_id = $2, drive_link = $3
		WHERE id = $1`, id, fileID, link)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const certificateViewQuery = `
	SELECT c.id, c.code, c.student_id, c.course_id, c.course_hours_id,
		c.drive_file_id, c.drive_link, c.issued_at, c.created_at,
		s.name, co.title, ch.hours
	FROM certificates c
	JOIN students s ON s.id = c.student_id
	JOIN courses co ON co.id = c.course_id
	JOIN course_hours ch ON ch.id = c.course_hours_id`

// GetByCode resolves a certificate for the public verification page.
func (r *CertificateRepository) GetByCode(ctx context.Context, code string) (CertificateView, error) {
	row := r.db.QueryRow(ctx, certificateViewQuery+` WHERE c.code = $1`, code)
	return scanCertificateView(row)
}

func (r *CertificateRepository) List(ctx context.Context) ([]CertificateView, error) {
	rows, err := r.db.Query(ctx, certificateViewQuery+` ORDER BY c.issued_at DESC`)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	var certs []CertificateView
	for rows.Next() {
		cv, err := scanCertificateView(rows)
		if err != nil {
			return nil, err
		}
		certs = append(certs, cv)
	}
	return certs, wrapErr(rows.Err())
}

func (r *CertificateRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM certificates`).Scan(&n); err != nil {
		return 0, wrapErr(err)
	}
	return n, nil
}

func scanCertificateView(row pgx.Row) (CertificateView, error) {
	var cv CertificateView
	err := row.Scan(
		&cv.ID, &cv.Code, &cv.StudentID, &cv.CourseID, &cv.CourseHoursID,
		&cv.DriveFileID, &cv.DriveLink, &cv.IssuedAt, &cv.CreatedAt,
		&cv.StudentName, &cv.CourseTitle, &cv.Hours,
	)
	if err != nil {
		return CertificateView{}, wrapErr(err)
	}
	return cv, nil
}
