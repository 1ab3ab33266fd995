package redis

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tasks-api/internal/config"
)

func TestNewClient(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		client, err := NewClient(ctx, config.RedisConfig{Enabled: false, URL: "redis://localhost:6379"}, logger)
		require.NoError(t, err)
		assert.Nil(t, client)
	})

	t.Run("malformed url", func(t *testing.T) {
		_, err := NewClient(ctx, config.RedisConfig{Enabled: true, URL: "http://:pw@nowhere"}, logger)
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "pw@")
	})

	t.Run("unreachable degrades to nil", func(t *testing.T) {
		client, err := NewClient(ctx, config.RedisConfig{Enabled: true, URL: "redis://127.0.0.1:1/0"}, logger)
		require.NoError(t, err)
		assert.Nil(t, client)
	})
}
