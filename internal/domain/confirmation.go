package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PurposeEmailConfirmation tags tokens issued at registration.
const PurposeEmailConfirmation = "email_confirmation"

// ConfirmationToken is the persisted half of a one-time token. Only the
// SHA-256 hash of the secret is stored; the plaintext goes out by mail.
type ConfirmationToken struct {
	ID        int64
	UserID    uuid.UUID
	TokenHash string
	Purpose   string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// NewConfirmationToken generates a random secret for userID valid for ttl.
// It returns the plaintext secret and the record to persist.
func NewConfirmationToken(userID uuid.UUID, purpose string, ttl time.Duration, now time.Time) (string, *ConfirmationToken, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", nil, fmt.Errorf("failed to generate confirmation token: %w", err)
	}
	secret := base64.RawURLEncoding.EncodeToString(buf)
	now = now.UTC()
	return secret, &ConfirmationToken{
		UserID:    userID,
		TokenHash: HashConfirmationToken(secret),
		Purpose:   purpose,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}, nil
}

// HashConfirmationToken returns the hex SHA-256 digest stored for secret.
func HashConfirmationToken(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// Usable reports whether the token is unused and unexpired at now.
func (c *ConfirmationToken) Usable(now time.Time) bool {
	return c.UsedAt == nil && now.Before(c.ExpiresAt)
}
