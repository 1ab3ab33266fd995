package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/platform/mail"
	"github.com/phrazzld/tasks-api/internal/redact"
	"github.com/phrazzld/tasks-api/internal/service/auth"
	"github.com/phrazzld/tasks-api/internal/store"
)

// IdentityService manages accounts and the authentication boundary.
type IdentityService interface {
	// Register creates an unverified user and starts email confirmation.
	// Returns a domain.ValidationError for bad input and store.ErrUsernameExists
	// or store.ErrEmailExists on a conflict, in which case nothing is stored.
	Register(ctx context.Context, username, email, password string) (*domain.User, error)

	// Authenticate checks credentials. Fails with ErrInvalidCredentials.
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)

	// Login authenticates and issues a token pair.
	Login(ctx context.Context, username, password string) (*auth.TokenPair, error)

	// Refresh exchanges a valid refresh token for a new pair.
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)

	// ResolvePrincipal validates an access token and loads its subject.
	ResolvePrincipal(ctx context.Context, accessToken string) (*domain.User, error)

	// ConfirmEmail consumes a confirmation token and verifies the email.
	ConfirmEmail(ctx context.Context, token string) error

	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, profile domain.Profile) (*domain.User, error)

	// ChangePassword requires the current password; a mismatch is
	// ErrInvalidCredentials.
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error
}

// IdentityConfig holds the settings of the confirmation workflow.
type IdentityConfig struct {
	ConfirmationTTL time.Duration
	// ConfirmURLBase is joined with the token to form the link in the mail.
	ConfirmURLBase string
}

type identityService struct {
	db         store.TxBeginner
	users      store.UserStore
	tokens     store.ConfirmationTokenStore
	jwtService auth.JWTService
	verifier   auth.PasswordVerifier
	mailer     mail.Dispatcher
	cfg        IdentityConfig
	logger     *slog.Logger
	timeFunc   func() time.Time
}

var _ IdentityService = (*identityService)(nil)

// NewIdentityService creates an IdentityService.
func NewIdentityService(
	db store.TxBeginner,
	users store.UserStore,
	tokens store.ConfirmationTokenStore,
	jwtService auth.JWTService,
	verifier auth.PasswordVerifier,
	mailer mail.Dispatcher,
	cfg IdentityConfig,
	logger *slog.Logger,
) (IdentityService, error) {
	if db == nil || users == nil || tokens == nil {
		return nil, fmt.Errorf("identity service requires a database and stores")
	}
	if jwtService == nil || verifier == nil || mailer == nil {
		return nil, fmt.Errorf("identity service requires a token service, verifier and mailer")
	}
	if cfg.ConfirmationTTL <= 0 {
		return nil, fmt.Errorf("confirmation ttl must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &identityService{
		db:         db,
		users:      users,
		tokens:     tokens,
		jwtService: jwtService,
		verifier:   verifier,
		mailer:     mailer,
		cfg:        cfg,
		logger:     logger.With(slog.String("component", "identity_service")),
		timeFunc:   time.Now,
	}, nil
}

func (s *identityService) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, s.logger)
}

// Register implements IdentityService.
func (s *identityService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	user, err := domain.NewUser(username, email, password)
	if err != nil {
		return nil, err
	}

	var secret string
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.users.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		plain, token, err := domain.NewConfirmationToken(
			user.ID, domain.PurposeEmailConfirmation, s.cfg.ConfirmationTTL, s.timeFunc())
		if err != nil {
			return err
		}
		if err := s.tokens.WithTx(tx).Create(ctx, token); err != nil {
			return err
		}
		secret = plain
		return nil
	})
	if err != nil {
		if store.IsDuplicateError(err) {
			s.log(ctx).Debug("registration rejected", slog.String("reason", err.Error()))
			return nil, err
		}
		s.log(ctx).Error("registration failed", slog.String("error", redact.Error(err)))
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	msg := mail.ConfirmationMessage{
		UserID:     user.ID,
		Username:   user.Username,
		Email:      user.Email,
		Token:      secret,
		ConfirmURL: s.confirmURL(secret),
	}
	if err := s.mailer.SendConfirmation(ctx, msg); err != nil {
		// The account exists either way; the user can ask for a new mail.
		s.log(ctx).Warn("failed to dispatch confirmation mail",
			slog.String("user_id", user.ID.String()),
			slog.String("error", redact.Error(err)))
	}

	s.log(ctx).Info("user registered", slog.String("user_id", user.ID.String()))
	return user, nil
}

func (s *identityService) confirmURL(secret string) string {
	return strings.TrimRight(s.cfg.ConfirmURLBase, "/") + "/" + url.PathEscape(secret)
}

// Authenticate implements IdentityService.
func (s *identityService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.verifier.CompareDummy(password)
			return nil, ErrInvalidCredentials
		}
		s.log(ctx).Error("failed to load user for authentication", slog.String("error", redact.Error(err)))
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		s.log(ctx).Debug("password mismatch", slog.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Login implements IdentityService.
func (s *identityService) Login(ctx context.Context, username, password string) (*auth.TokenPair, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	pair, err := s.jwtService.IssuePair(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}
	s.log(ctx).Info("user logged in", slog.String("user_id", user.ID.String()))
	return pair, nil
}

// Refresh implements IdentityService.
func (s *identityService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.jwtService.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %w", auth.ErrInvalidRefreshToken, ErrPrincipalNotFound)
		}
		return nil, fmt.Errorf("failed to load refresh subject: %w", err)
	}
	pair, err := s.jwtService.IssuePair(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}
	return pair, nil
}

// ResolvePrincipal implements IdentityService.
func (s *identityService) ResolvePrincipal(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.jwtService.ValidateToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.log(ctx).Debug("token subject not found", slog.String("user_id", claims.UserID.String()))
			return nil, ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("failed to resolve principal: %w", err)
	}
	return user, nil
}

// ConfirmEmail implements IdentityService.
func (s *identityService) ConfirmEmail(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrInvalidOrExpiredToken
	}
	hash := domain.HashConfirmationToken(token)

	var userID uuid.UUID
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		id, err := s.tokens.WithTx(tx).Consume(ctx, hash, domain.PurposeEmailConfirmation, s.timeFunc())
		if err != nil {
			return err
		}
		userID = id
		return s.users.WithTx(tx).MarkEmailVerified(ctx, id)
	})
	if err != nil {
		if errors.Is(err, store.ErrTokenNotFound) || errors.Is(err, store.ErrUserNotFound) {
			return ErrInvalidOrExpiredToken
		}
		s.log(ctx).Error("email confirmation failed", slog.String("error", redact.Error(err)))
		return fmt.Errorf("failed to confirm email: %w", err)
	}

	s.log(ctx).Info("email confirmed", slog.String("user_id", userID.String()))
	return nil
}

// GetProfile implements IdentityService.
func (s *identityService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return user, nil
}

// UpdateProfile implements IdentityService.
func (s *identityService) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	profile domain.Profile,
) (*domain.User, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	user, err := s.users.UpdateProfile(ctx, userID, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// ChangePassword implements IdentityService.
func (s *identityService) ChangePassword(
	ctx context.Context,
	userID uuid.UUID,
	currentPassword, newPassword string,
) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if err := s.verifier.Compare(user.HashedPassword, currentPassword); err != nil {
		return ErrInvalidCredentials
	}
	if err := domain.ValidatePassword(newPassword); err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, newPassword); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	s.log(ctx).Info("password changed", slog.String("user_id", userID.String()))
	return nil
}
