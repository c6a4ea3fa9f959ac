package storage

import "embed"

// Migrations holds the embedded goose SQL migrations, applied via
// integration/database/pg.Migrate.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations passed to goose.
const MigrationsDir = "migrations"
