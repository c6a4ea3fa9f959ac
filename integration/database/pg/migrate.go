package pg

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrate applies pending goose migrations from the given filesystem.
// Goose runs over database/sql, so the pgx pool config is bridged through
// the stdlib driver.
func Migrate(ctx context.Context, cfg Config, fsys fs.FS, dir string, logger *slog.Logger) error {
	if cfg.ConnectionString == "" {
		return ErrEmptyConnectionString
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.ConnectionString)
	if err != nil {
		return errors.Join(ErrFailedToParseConfig, err)
	}

	db := stdlib.OpenDB(*poolCfg.ConnConfig)
	defer func() {
		if cerr := db.Close(); cerr != nil && logger != nil {
			logger.ErrorContext(ctx, "failed to close migration connection", "error", cerr)
		}
	}()

	goose.SetBaseFS(fsys)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}

	if err := goose.UpContext(ctx, db, dir); err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}

	if logger != nil {
		logger.InfoContext(ctx, "database migrations applied")
	}
	return nil
}
