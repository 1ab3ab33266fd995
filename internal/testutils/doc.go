// Package testutils provides in-memory implementations of the store
// interfaces and small fixtures, so service and HTTP tests run without a
// database. PostgreSQL behaviour itself is covered by the container-backed
// tests in internal/platform/postgres.
package testutils
