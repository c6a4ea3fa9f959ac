// Package storage provides pgx-backed repositories for the application's
// entities and the embedded goose migrations that define their schema.
// Repositories accept any DBTX, so they run against a pool or inside a
// transaction unchanged.
package storage
