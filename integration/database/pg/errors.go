package pg

import "errors"

var (
	ErrEmptyConnectionString = errors.New("empty postgres connection string")
	ErrFailedToParseConfig   = errors.New("failed to parse postgres pool config")
	ErrConnectionFailed      = errors.New("failed to connect to postgres")
	ErrMigrationFailed       = errors.New("database migration failed")
	ErrHealthcheckFailed     = errors.New("postgres healthcheck failed")
)
