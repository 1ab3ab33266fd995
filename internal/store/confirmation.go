package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
)

// ConfirmationTokenStore persists hashed one-time tokens.
type ConfirmationTokenStore interface {
	Create(ctx context.Context, token *domain.ConfirmationToken) error

	// Consume atomically marks the unused, unexpired token with the given
	// hash and purpose as used and returns its user. Unknown, expired and
	// already used tokens all yield ErrTokenNotFound.
	Consume(ctx context.Context, tokenHash, purpose string, now time.Time) (uuid.UUID, error)

	WithTx(tx *sql.Tx) ConfirmationTokenStore
}
