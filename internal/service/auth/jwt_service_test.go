package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tasks-api/internal/config"
)

const testSecret = "test-secret-that-is-at-least-32-chars-long"

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:                   testSecret,
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 7 * 24 * 60,
	}
}

// newTestService returns a service whose clock is controlled by *now.
func newTestService(t *testing.T, now *time.Time) *hmacJWTService {
	t.Helper()
	svc, err := newJWTService(testAuthConfig(), func() time.Time { return *now })
	require.NoError(t, err)
	return svc
}

func TestNewJWTService_RejectsWeakConfig(t *testing.T) {
	cfg := testAuthConfig()
	cfg.JWTSecret = "short"
	_, err := NewJWTService(cfg)
	assert.Error(t, err)

	cfg = testAuthConfig()
	cfg.TokenLifetimeMinutes = 0
	_, err = NewJWTService(cfg)
	assert.Error(t, err)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, &now)
	ctx := context.Background()
	userID := uuid.New()

	token, err := svc.GenerateToken(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.True(t, claims.ExpiresAt.Equal(now.Add(time.Hour)))
	assert.NotEmpty(t, claims.ID)
}

func TestAccessToken_ExpiryBoundary(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, &now)
	ctx := context.Background()

	token, err := svc.GenerateToken(ctx, uuid.New())
	require.NoError(t, err)

	now = now.Add(59*time.Minute + 59*time.Second)
	_, err = svc.ValidateToken(ctx, token)
	assert.NoError(t, err, "token should validate one second before expiry")

	now = now.Add(time.Second)
	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.False(t, errors.Is(err, ErrInvalidToken), "expiry is reported separately")
}

func TestValidateToken_Failures(t *testing.T) {
	now := time.Now()
	svc := newTestService(t, &now)
	ctx := context.Background()

	valid, err := svc.GenerateToken(ctx, uuid.New())
	require.NoError(t, err)
	refresh, err := svc.GenerateRefreshToken(ctx, uuid.New())
	require.NoError(t, err)

	other, err := newJWTService(config.AuthConfig{
		JWTSecret:                   "a-completely-different-secret-of-32+chars",
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 60,
	}, time.Now)
	require.NoError(t, err)
	foreign, err := other.GenerateToken(ctx, uuid.New())
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwtCustomClaims{
		UserID:    uuid.New(),
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrMalformedToken},
		{"garbage", "not.a.token", ErrMalformedToken},
		{"two segments", parts[0] + "." + parts[1], ErrMalformedToken},
		{"tampered signature", tampered, ErrInvalidSignature},
		{"different secret", foreign, ErrInvalidSignature},
		{"refresh used as access", refresh, ErrWrongTokenType},
		{"alg none", unsigned, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.ValidateToken(ctx, tt.token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	now := time.Now()
	svc := newTestService(t, &now)
	ctx := context.Background()
	userID := uuid.New()

	pair, err := svc.IssuePair(ctx, userID)
	require.NoError(t, err)
	require.NotEqual(t, pair.Access, pair.Refresh)

	claims, err := svc.ValidateRefreshToken(ctx, pair.Refresh)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)

	_, err = svc.ValidateRefreshToken(ctx, pair.Access)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestRefreshToken_Expired(t *testing.T) {
	now := time.Now()
	svc := newTestService(t, &now)
	ctx := context.Background()

	token, err := svc.GenerateRefreshToken(ctx, uuid.New())
	require.NoError(t, err)

	now = now.Add(8 * 24 * time.Hour)
	_, err = svc.ValidateRefreshToken(ctx, token)
	assert.ErrorIs(t, err, ErrExpiredRefreshToken)
}

func TestRefreshToken_Malformed(t *testing.T) {
	now := time.Now()
	svc := newTestService(t, &now)

	_, err := svc.ValidateRefreshToken(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestBcryptVerifier(t *testing.T) {
	v, err := NewBcryptVerifier(4)
	require.NoError(t, err)

	hash, err := HashPassword("pw123", 4)
	require.NoError(t, err)

	assert.NoError(t, v.Compare(hash, "pw123"))
	assert.Error(t, v.Compare(hash, "wrong"))
	assert.NotPanics(t, func() { v.CompareDummy("anything") })
}
