package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/store"
)

// PostgresConfirmationTokenStore implements store.ConfirmationTokenStore.
type PostgresConfirmationTokenStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.ConfirmationTokenStore = (*PostgresConfirmationTokenStore)(nil)

// NewPostgresConfirmationTokenStore creates a token store over db.
func NewPostgresConfirmationTokenStore(db store.DBTX, logger *slog.Logger) *PostgresConfirmationTokenStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresConfirmationTokenStore{
		db:     db,
		logger: logger.With(slog.String("component", "confirmation_token_store")),
	}
}

// WithTx implements store.ConfirmationTokenStore.
func (s *PostgresConfirmationTokenStore) WithTx(tx *sql.Tx) store.ConfirmationTokenStore {
	clone := *s
	clone.db = tx
	return &clone
}

// Create implements store.ConfirmationTokenStore.
func (s *PostgresConfirmationTokenStore) Create(ctx context.Context, token *domain.ConfirmationToken) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO email_confirmation_tokens (user_id, token_hash, purpose, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		token.UserID, token.TokenHash, token.Purpose, token.ExpiresAt, token.CreatedAt,
	).Scan(&token.ID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to store confirmation token",
			slog.String("error", err.Error()),
			slog.String("user_id", token.UserID.String()))
		return MapError(err)
	}
	return nil
}

// Consume implements store.ConfirmationTokenStore with a single
// conditional UPDATE, so a token can be redeemed at most once.
func (s *PostgresConfirmationTokenStore) Consume(
	ctx context.Context,
	tokenHash, purpose string,
	now time.Time,
) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		UPDATE email_confirmation_tokens
		SET used_at = $3
		WHERE token_hash = $1 AND purpose = $2 AND used_at IS NULL AND expires_at > $3
		RETURNING user_id`,
		tokenHash, purpose, now.UTC(),
	).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, store.ErrTokenNotFound
		}
		return uuid.Nil, MapError(err)
	}
	return userID, nil
}
