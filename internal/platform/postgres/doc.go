// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package, the embedded
// schema migrations, and the connection setup. Queries go through
// database/sql with the pgx stdlib driver.
package postgres
