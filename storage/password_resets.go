package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PasswordReset is a single-use expiring token emailed to an administrator.
type PasswordReset struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Consumed reports whether the token was already used.
func (p PasswordReset) Consumed() bool {
	return p.UsedAt != nil
}

// Expired reports whether the token's validity window has elapsed.
func (p PasswordReset) Expired() bool {
	return time.Now().After(p.ExpiresAt)
}

// PasswordResetRepository persists password reset tokens.
type PasswordResetRepository struct {
	db DBTX
}

func NewPasswordResetRepository(db DBTX) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

func (r *PasswordResetRepository) Create(ctx context.Context, p *PasswordReset) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()

	_, err := r.db.Exec(ctx, `
		INSERT INTO password_resets (id, user_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.UserID, p.Token, p.ExpiresAt, p.CreatedAt,
	)
	return wrapErr(err)
}

func (r *PasswordResetRepository) GetByToken(ctx context.Context, token string) (PasswordReset, error) {
	var p PasswordReset
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, token, expires_at, used_at, created_at
		FROM password_resets WHERE token = $1`, token,
	).Scan(&p.ID, &p.UserID, &p.Token, &p.ExpiresAt, &p.UsedAt, &p.CreatedAt)
	if err != nil {
		return PasswordReset{}, wrapErr(err)
	}
	return p, nil
}

// Consume marks the token used. The used_at guard makes consumption
// single-use even under concurrent submissions.
func (r *PasswordResetRepository) Consume(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE password_resets SET used_at = now()
		WHERE id = $1 AND used_at IS NULL`, id)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExpired prunes stale tokens, returning how many were removed.
func (r *PasswordResetRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM password_resets WHERE expires_at < now()`)
	if err != nil {
		return 0, wrapErr(err)
	}
	return tag.RowsAffected(), nil
}
