package testutils

import (
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/mocks"
	"github.com/phrazzld/tasks-api/internal/service"
	"github.com/phrazzld/tasks-api/internal/service/auth"
)

// TestJWTSecret is long enough for auth.NewJWTService.
const TestJWTSecret = "test-secret-that-is-at-least-32-characters"

// DiscardLogger returns a logger that writes nowhere.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestAuthConfig returns auth settings suitable for tests.
func TestAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:                        TestJWTSecret,
		TokenLifetimeMinutes:             60,
		RefreshTokenLifetimeMinutes:      7 * 24 * 60,
		ConfirmationTokenLifetimeMinutes: 24 * 60,
		BCryptCost:                       4,
	}
}

// Services bundles real services over in-memory stores.
type Services struct {
	DB       *sql.DB
	Users    *MemoryUserStore
	Tasks    *MemoryTaskStore
	Tokens   *MemoryConfirmationTokenStore
	JWT      auth.JWTService
	Mailer   *mocks.MockDispatcher
	Identity service.IdentityService
	Task     service.TaskService
}

// NewServices wires IdentityService and TaskService to fresh in-memory
// stores, a real HMAC token service and a recording mail dispatcher.
func NewServices(t *testing.T) *Services {
	t.Helper()

	s := &Services{
		DB:     NewNoopTxDB(),
		Users:  NewMemoryUserStore(),
		Tasks:  NewMemoryTaskStore(),
		Tokens: NewMemoryConfirmationTokenStore(),
		Mailer: &mocks.MockDispatcher{},
	}
	t.Cleanup(func() { _ = s.DB.Close() })

	var err error
	s.JWT, err = auth.NewJWTService(TestAuthConfig())
	require.NoError(t, err)
	verifier, err := auth.NewBcryptVerifier(4)
	require.NoError(t, err)

	s.Identity, err = service.NewIdentityService(s.DB, s.Users, s.Tokens, s.JWT, verifier, s.Mailer,
		service.IdentityConfig{
			ConfirmationTTL: 24 * time.Hour,
			ConfirmURLBase:  "http://localhost:8080/api/auth/confirm-email",
		}, DiscardLogger())
	require.NoError(t, err)

	s.Task, err = service.NewTaskService(s.Tasks, DiscardLogger())
	require.NoError(t, err)
	return s
}
