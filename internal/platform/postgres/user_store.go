package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/store"
)

const userColumns = `id, username, email, hashed_password, email_verified,
	full_name, bio, location, avatar_url, created_at, updated_at`

// PostgresUserStore implements store.UserStore on PostgreSQL.
// Passwords are hashed with bcrypt before they reach the database.
type PostgresUserStore struct {
	db         store.DBTX
	bcryptCost int
	logger     *slog.Logger
	timeFunc   func() time.Time
}

var _ store.UserStore = (*PostgresUserStore)(nil)

// NewPostgresUserStore creates a user store over db. A bcryptCost outside
// bcrypt's range falls back to bcrypt.DefaultCost.
func NewPostgresUserStore(db store.DBTX, bcryptCost int, logger *slog.Logger) *PostgresUserStore {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserStore{
		db:         db,
		bcryptCost: bcryptCost,
		logger:     logger.With(slog.String("component", "user_store")),
		timeFunc:   time.Now,
	}
}

// WithTx implements store.UserStore.
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	clone := *s
	clone.db = tx
	return &clone
}

func (s *PostgresUserStore) now() time.Time {
	return s.timeFunc().UTC().Truncate(time.Microsecond)
}

func (s *PostgresUserStore) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Create implements store.UserStore.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		return err
	}
	if user.Password == "" {
		return fmt.Errorf("%w: plaintext password required to create user", store.ErrInvalidEntity)
	}

	hashed, err := s.hash(user.Password)
	if err != nil {
		return err
	}

	now := s.now()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, hashed_password, email_verified,
			full_name, bio, location, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`,
		user.ID, user.Username, user.Email, hashed, user.EmailVerified,
		user.Profile.FullName, user.Profile.Bio, user.Profile.Location, user.Profile.AvatarURL,
		now,
	)
	if err != nil {
		mapped := MapError(err)
		if store.IsDuplicateError(mapped) {
			log.Debug("user create rejected as duplicate", slog.String("error", mapped.Error()))
		} else {
			log.Error("failed to create user", slog.String("error", err.Error()))
		}
		return mapped
	}

	user.HashedPassword = hashed
	user.Password = ""
	user.CreatedAt = now
	user.UpdatedAt = now

	log.Info("user created", slog.String("user_id", user.ID.String()))
	return nil
}

// GetByID implements store.UserStore.
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return s.scanUser(ctx, row)
}

// GetByUsername implements store.UserStore.
func (s *PostgresUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return s.scanUser(ctx, row)
}

// UpdateProfile implements store.UserStore.
func (s *PostgresUserStore) UpdateProfile(
	ctx context.Context,
	id uuid.UUID,
	profile domain.Profile,
) (*domain.User, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `
		UPDATE users
		SET full_name = $2, bio = $3, location = $4, avatar_url = $5, updated_at = $6
		WHERE id = $1
		RETURNING `+userColumns,
		id, profile.FullName, profile.Bio, profile.Location, profile.AvatarURL, s.now(),
	)
	return s.scanUser(ctx, row)
}

// UpdatePassword implements store.UserStore.
func (s *PostgresUserStore) UpdatePassword(ctx context.Context, id uuid.UUID, password string) error {
	if err := domain.ValidatePassword(password); err != nil {
		return err
	}
	hashed, err := s.hash(password)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET hashed_password = $2, updated_at = $3 WHERE id = $1`,
		id, hashed, s.now())
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update password",
			slog.String("error", err.Error()), slog.String("user_id", id.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// MarkEmailVerified implements store.UserStore.
func (s *PostgresUserStore) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET email_verified = TRUE, updated_at = $2 WHERE id = $1`,
		id, s.now())
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// Delete implements store.UserStore.
func (s *PostgresUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrUserNotFound)
}

func (s *PostgresUserStore) scanUser(ctx context.Context, row *sql.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.HashedPassword, &u.EmailVerified,
		&u.Profile.FullName, &u.Profile.Bio, &u.Profile.Location, &u.Profile.AvatarURL,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to read user",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return &u, nil
}
