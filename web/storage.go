package web

import (
	"context"

	"github.com/google/uuid"

	"github.com/treinahub/treinahub/storage"
)

// Per-entity store interfaces, satisfied by the storage repositories.
// Handlers depend on these rather than the concrete pgx-backed types so
// tests can swap in in-memory fakes.

type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (storage.User, error)
	GetByEmail(ctx context.Context, email string) (storage.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

type StudentStore interface {
	Create(ctx context.Context, s *storage.Student) error
	Update(ctx context.Context, s *storage.Student) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (storage.Student, error)
	List(ctx context.Context) ([]storage.Student, error)
	Count(ctx context.Context) (int64, error)
}

type TeacherStore interface {
	Create(ctx context.Context, t *storage.Teacher) error
	Update(ctx context.Context, t *storage.Teacher) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (storage.Teacher, error)
	List(ctx context.Context) ([]storage.Teacher, error)
	Count(ctx context.Context) (int64, error)
}

type CourseStore interface {
	Create(ctx context.Context, c *storage.Course) error
	Update(ctx context.Context, c *storage.Course) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (storage.Course, error)
	List(ctx context.Context) ([]storage.Course, error)
	ListPublished(ctx context.Context) ([]storage.Course, error)
	Count(ctx context.Context) (int64, error)
}

type CourseHoursStore interface {
	Create(ctx context.Context, ch *storage.CourseHours) error
	Update(ctx context.Context, ch *storage.CourseHours) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (storage.CourseHours, error)
	List(ctx context.Context) ([]storage.CourseHours, error)
	ListActive(ctx context.Context) ([]storage.CourseHours, error)
}

type CertificateStore interface {
	Create(ctx context.Context, c *storage.Certificate) error
	SetDriveFile(ctx context.Context, id uuid.UUID, fileID, link string) error
	GetByCode(ctx context.Context, code string) (storage.CertificateView, error)
	List(ctx context.Context) ([]storage.CertificateView, error)
	Count(ctx context.Context) (int64, error)
}

type PasswordResetStore interface {
	Create(ctx context.Context, p *storage.PasswordReset) error
	GetByToken(ctx context.Context, token string) (storage.PasswordReset, error)
	Consume(ctx context.Context, id uuid.UUID) error
}

var (
	_ UserStore          = (*storage.UserRepository)(nil)
	_ StudentStore       = (*storage.StudentRepository)(nil)
	_ TeacherStore       = (*storage.TeacherRepository)(nil)
	_ CourseStore        = (*storage.CourseRepository)(nil)
	_ CourseHoursStore   = (*storage.CourseHoursRepository)(nil)
	_ CertificateStore   = (*storage.CertificateRepository)(nil)
	_ PasswordResetStore = (*storage.PasswordResetRepository)(nil)
)
