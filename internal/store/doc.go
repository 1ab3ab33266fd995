// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic. Task persistence is owner-scoped: every
// TaskStore method takes the owning user's ID, and a task that belongs to
// someone else is indistinguishable from one that does not exist.
package store
