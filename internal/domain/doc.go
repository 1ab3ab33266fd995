// Package domain contains the core business entities, value objects, and
// domain logic of the application: users and their profiles, tasks with
// their priority, status, completion and ordering rules, and email
// confirmation tokens. It is independent of storage and transport.
package domain
