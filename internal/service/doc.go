// Package service contains the application use cases. It orchestrates the
// domain types and the persistence interfaces from internal/store and never
// depends on a concrete store.
//
// IdentityService covers registration, credential checks, token issuance
// and resolution, email confirmation, profiles and password changes.
// TaskService covers the owner-scoped task operations; every method takes
// the authenticated owner as a mandatory argument.
//
// Operations that touch more than one store run inside
// store.RunInTransaction with transaction-bound stores obtained via WithTx.
package service
