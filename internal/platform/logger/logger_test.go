package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in    string
		want  slog.Level
		valid bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{" warn ", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.valid, ok, tt.in)
	}
}

func TestSetupWithWriterFiltersByLevel(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	var buf bytes.Buffer
	l := SetupWithWriter(config.ServerConfig{LogLevel: "warn"}, &buf)
	require.NotNil(t, l)

	l.Info("dropped")
	l.Warn("kept")
	slog.Error("via default")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, `"msg":"kept"`)
	assert.Contains(t, out, "via default", "Setup should install the logger as default")
}

func TestContextHelpers(t *testing.T) {
	t.Parallel()

	buf, l := NewTestLogger(t)

	assert.Nil(t, FromContext(context.Background()))
	assert.Same(t, l, FromContextOrDefault(context.Background(), l))
	assert.NotNil(t, FromContextOrDefault(context.Background(), nil))

	ctx := WithLogger(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))

	ctx = WithRequestID(ctx, "req-123")
	assert.Equal(t, "req-123", RequestIDFromContext(ctx))

	FromContext(ctx).Info("tagged")
	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "req-123", entries[0]["request_id"])
}

func TestWithRequestIDWithoutLogger(t *testing.T) {
	t.Parallel()

	ctx := WithRequestID(context.Background(), "abc")
	assert.Equal(t, "abc", RequestIDFromContext(ctx))
	assert.Nil(t, FromContext(ctx))
}
