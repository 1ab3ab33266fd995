package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Token types carried in the "type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// JWTService issues and validates signed, unencrypted bearer tokens. Tokens
// are not persisted; validity is the signature plus the expiry.
type JWTService interface {
	// GenerateToken creates a signed access token for userID.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken checks an access token and returns its claims.
	// Fails with ErrExpiredToken, ErrMalformedToken, ErrInvalidSignature or
	// ErrWrongTokenType.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateRefreshToken creates a signed, longer-lived refresh token.
	GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateRefreshToken checks a refresh token. Fails with
	// ErrExpiredRefreshToken or ErrInvalidRefreshToken, the latter also
	// wrapping the specific cause.
	ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error)

	// IssuePair generates an access and a refresh token together.
	IssuePair(ctx context.Context, userID uuid.UUID) (*TokenPair, error)
}

// TokenPair is what login and refresh return to the client.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Claims represents the custom claims structure for the JWT tokens.
type Claims struct {
	UserID    uuid.UUID
	TokenType string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}
