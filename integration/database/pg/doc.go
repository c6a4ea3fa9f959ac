// Package pg provides PostgreSQL connection management: a pgx connection
// pool with retry logic, goose migrations over an embedded filesystem, and
// a health check function.
package pg
