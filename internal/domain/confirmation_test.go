package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfirmationToken(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	secret, tok, err := NewConfirmationToken(userID, PurposeEmailConfirmation, time.Hour, now)

	require.NoError(t, err)
	assert.Len(t, secret, 43)
	assert.Equal(t, userID, tok.UserID)
	assert.Equal(t, HashConfirmationToken(secret), tok.TokenHash)
	assert.NotEqual(t, secret, tok.TokenHash)
	assert.Equal(t, now.Add(time.Hour), tok.ExpiresAt)
	assert.True(t, tok.Usable(now))
	assert.False(t, tok.Usable(now.Add(time.Hour)))

	used := now
	tok.UsedAt = &used
	assert.False(t, tok.Usable(now))

	other, _, err := NewConfirmationToken(userID, PurposeEmailConfirmation, time.Hour, now)
	require.NoError(t, err)
	assert.NotEqual(t, secret, other)
}
