package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/mocks"
	"github.com/phrazzld/tasks-api/internal/platform/mail"
	"github.com/phrazzld/tasks-api/internal/service"
	"github.com/phrazzld/tasks-api/internal/service/auth"
	"github.com/phrazzld/tasks-api/internal/store"
	"github.com/phrazzld/tasks-api/internal/testutils"
)

func TestRegister_CreatesUnverifiedUserAndSendsConfirmation(t *testing.T) {
	t.Parallel()
	s := testutils.NewServices(t)
	ctx := context.Background()

	user, err := s.Identity.Register(ctx, "alice", "alice@x.com", "pw123")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.False(t, user.EmailVerified)
	assert.Empty(t, user.Password, "plaintext must not survive registration")
	assert.NotEmpty(t, user.HashedPassword)

	msg, ok := s.Mailer.Last()
	require.True(t, ok, "a confirmation mail should be dispatched")
	assert.Equal(t, user.ID, msg.UserID)
	assert.Equal(t, "alice@x.com", msg.Email)
	assert.NotEmpty(t, msg.Token)
	assert.True(t, strings.HasSuffix(msg.ConfirmURL, "/"+msg.Token))
}

func TestRegister_Duplicates(t *testing.T) {
	t.Parallel()
	s := testutils.NewServices(t)
	ctx := context.Background()

	_, err := s.Identity.Register(ctx, "alice", "alice@x.com", "pw123")
	require.NoError(t, err)

	_, err = s.Identity.Register(ctx, "alice", "other@x.com", "pw123")
	assert.ErrorIs(t, err, store.ErrUsernameExists)

	_, err = s.Identity.Register(ctx, "bob", "ALICE@x.com", "pw123")
	assert.ErrorIs(t, err, store.ErrEmailExists)

	assert.Equal(t, 1, s.Users.Count(), "failed registrations must not create users")
	assert.Len(t, s.Mailer.Sent(), 1)
}

func TestRegister_InvalidInput(t *testing.T) {
	t.Parallel()
	s := testutils.NewServices(t)

	tests := []struct {
		name                      string
		username, email, password string
	}{
		{"empty username", "", "a@x.com", "pw"},
		{"bad username chars", "al ice", "a@x.com", "pw"},
		{"bad email", "alice", "not-an-email", "pw"},
		{"empty password", "alice", "a@x.com", ""},
		{"password over 72 bytes", "alice", "a@x.com", strings.Repeat("p", 73)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Identity.Register(context.Background(), tt.username, tt.email, tt.password)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
	assert.Zero(t, s.Users.Count())
	assert.Empty(t, s.Mailer.Sent())
}

func TestRegister_MailFailureDoesNotFailRegistration(t *testing.T) {
	t.Parallel()
	s := testutils.NewServices(t)
	s.Mailer.SendConfirmationFn = func(context.Context, mail.ConfirmationMessage) error {
		return errors.New("queue full")
	}

	_, err := s.Identity.Register(context.Background(), "alice", "alice@x.com", "pw123")
	require.NoError(t, err)
	assert.Equal(t, 1, s.Users.Count())
}

func TestRegister_RollsBackOnBeginFailure(t *testing.T) {
	t.Parallel()
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	sqlMock.ExpectBegin().WillReturnError(errors.New("connection reset"))

	users := &mocks.MockUserStore{}
	verifier, err := auth.NewBcryptVerifier(4)
	require.NoError(t, err)
	identity, err := service.NewIdentityService(db, users, testutils.NewMemoryConfirmationTokenStore(),
		&mocks.MockJWTService{}, verifier, &mocks.MockDispatcher{},
		service.IdentityConfig{ConfirmationTTL: 1}, testutils.DiscardLogger())
	require.NoError(t, err)

	_, err = identity.Register(context.Background(), "alice", "alice@x.com", "pw123")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrTransactionFailed)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()
	s := testutils.NewServices(t)
	ctx := context.Background()
	registered, err := s.Identity.Register(ctx, "alice", "alice@x.com", "pw123")
	require.NoError(t, err)

	user, err := s.Identity.Authenticate(ctx, "alice", "pw123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, wrongPassword := s.Identity.Authenticate(ctx, "alice", "nope")
	_, unknownUser := s.Identity.Authenticate(ctx, "mallory", "pw123")
	assert.ErrorIs(t, wrongPassword, service.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, service.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error(), "both failures must look identical")
}

func TestAuthenticate_UnknownUserSpendsHashingWork(t *testing.T) {
	t.Parallel()
	users := &mocks.MockUserStore{}
	users.On("GetByUsername", mock.Anything, "ghost").Return(nil, store.ErrUserNotFound)
	verifier := &mocks.MockPasswordVerifier{}

	identity, err := service.NewIdentityService(testutils.NewNoopTxDB(), users,
		testutils.NewMemoryConfirmationTokenStore(), &mocks.MockJWTService{}, verifier,
		&mocks.MockDispatcher{}, service.IdentityConfig{ConfirmationTTL: 1}, testutils.DiscardLogger())
	require.NoError(t, err)

	_, err = identity.Authenticate(context.Background(), "ghost", "pw")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	assert.Equal(t, 1, verifier.CompareDummyCallCount)
	assert.Zero(t, verifier.CompareCallCount)
	users.AssertExpectations(t)
}

func TestLoginAndResolvePrincipal(t *testing.T) {
	t.Parallel()
	s := testutils.NewServices(t)
	ctx := context.Background()
	registered, err := s.Identity.Register(ctx, "alice", "alice@x.com", "pw123")
	require.NoError(t, err)

	pair, err := s.Identity.Login(ctx, "alice", "pw123")
	require.NoError(t, err)

	principal, err := s.Identity.ResolvePrincipal(ctx, pair.Access)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, principal.ID)

	_, err = s.Identity.ResolvePrincipal(ctx, pair.Refresh)
	assert.ErrorIs(t, err, auth.ErrWrongTokenType)

	require.NoError(t, s.Users.Delete(ctx, registered.ID))
	_, err = s.Identity.ResolvePrincipal(ctx, pair.Access)
	assert.ErrorIs(t, err, service.ErrPrincipalNotFound)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestRefresh(t *testing.T) {
	t.Parallel()
	s := testutils.NewServices(t)
	ctx := context.Background()
	registered, err := s.Identity.Register(ctx, "alice", "alice@x.com", "pw123")
	require.NoError(t, err)
	pair, err := s.Identity.Login(ctx, "alice", "pw123")
	require.NoError(t, err)

	next, err := s.Identity.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)
	principal, err := s.Identity.ResolvePrincipal(ctx, next.Access)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, principal.ID)

	_, err = s.Identity.Refresh(ctx, pair.Access)
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)

	require.NoError(t, s.Users.Delete(ctx, registered.ID))
	_, err = s.Identity.Refresh(ctx, pair.Refresh)
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
}

func TestConfirmEmail(t *testing.T) {
	t.Parallel()
	s := testutils.NewServices(t)
	ctx := context.Background()
	user, err := s.Identity.Register(ctx, "alice", "alice@x.com", "pw123")
	require.NoError(t, err)
	msg, _ := s.Mailer.Last()

	assert.ErrorIs(t, s.Identity.ConfirmEmail(ctx, ""), service.ErrInvalidOrExpiredToken)
	assert.ErrorIs(t, s.Identity.ConfirmEmail(ctx, "bogus"), service.ErrInvalidOrExpiredToken)

	require.NoError(t, s.Identity.ConfirmEmail(ctx, msg.Token))
	stored, err := s.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, stored.EmailVerified)

	assert.ErrorIs(t, s.Identity.ConfirmEmail(ctx, msg.Token), service.ErrInvalidOrExpiredToken,
		"tokens are single use")
}

func TestProfile(t *testing.T) {
	t.Parallel()
	s := testutils.NewServices(t)
	ctx := context.Background()
	user, err := s.Identity.Register(ctx, "alice", "alice@x.com", "pw123")
	require.NoError(t, err)

	updated, err := s.Identity.UpdateProfile(ctx, user.ID, domain.Profile{
		FullName:  "Alice Liddell",
		AvatarURL: "https://example.com/a.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", updated.Profile.FullName)

	got, err := s.Identity.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Profile, got.Profile)

	_, err = s.Identity.UpdateProfile(ctx, user.ID, domain.Profile{AvatarURL: "javascript:alert(1)"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.Identity.GetProfile(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestChangePassword(t *testing.T) {
	t.Parallel()
	s := testutils.NewServices(t)
	ctx := context.Background()
	user, err := s.Identity.Register(ctx, "alice", "alice@x.com", "pw123")
	require.NoError(t, err)

	err = s.Identity.ChangePassword(ctx, user.ID, "wrong", "newpass")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	err = s.Identity.ChangePassword(ctx, user.ID, "pw123", "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, s.Identity.ChangePassword(ctx, user.ID, "pw123", "newpass"))
	_, err = s.Identity.Authenticate(ctx, "alice", "pw123")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, err = s.Identity.Authenticate(ctx, "alice", "newpass")
	assert.NoError(t, err)
}

func TestLogin_TokenIssueFailure(t *testing.T) {
	t.Parallel()
	user := &domain.User{ID: uuid.New(), Username: "alice", HashedPassword: "hash"}
	users := &mocks.MockUserStore{}
	users.On("GetByUsername", mock.Anything, "alice").Return(user, nil)
	jwtService := &mocks.MockJWTService{Err: errors.New("signing key unavailable")}

	identity, err := service.NewIdentityService(testutils.NewNoopTxDB(), users,
		testutils.NewMemoryConfirmationTokenStore(), jwtService,
		&mocks.MockPasswordVerifier{ShouldSucceed: true}, &mocks.MockDispatcher{},
		service.IdentityConfig{ConfirmationTTL: 1}, testutils.DiscardLogger())
	require.NoError(t, err)

	_, err = identity.Login(context.Background(), "alice", "pw123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, service.ErrInvalidCredentials)
	users.AssertExpectations(t)
}
