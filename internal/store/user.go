package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user, hashing user.Password into HashedPassword
	// and clearing the plaintext. Returns ErrUsernameExists or
	// ErrEmailExists on a uniqueness conflict, in which case nothing is stored.
	Create(ctx context.Context, user *domain.User) error

	// GetByID returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByUsername returns ErrUserNotFound if the user does not exist.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// UpdateProfile replaces the profile fields and returns the updated user.
	UpdateProfile(ctx context.Context, id uuid.UUID, profile domain.Profile) (*domain.User, error)

	// UpdatePassword hashes and stores a new plaintext password.
	UpdatePassword(ctx context.Context, id uuid.UUID, password string) error

	// MarkEmailVerified sets email_verified. It is idempotent.
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error

	// Delete removes the user and, by cascade, their tasks and tokens.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a UserStore bound to tx.
	WithTx(tx *sql.Tx) UserStore
}
