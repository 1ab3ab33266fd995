package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
)

func TestTraceMiddleware(t *testing.T) {
	buf, base := logger.NewTestLogger(t)

	var traceID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		require.NotNil(t, logger.FromContext(r.Context()))
		w.WriteHeader(http.StatusTeapot)
	})

	w := httptest.NewRecorder()
	NewTraceMiddleware(base)(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	require.NotEmpty(t, traceID)

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "request started", entries[0]["msg"])
	completed := entries[1]
	assert.Equal(t, "request completed", completed["msg"])
	assert.Equal(t, traceID, completed["trace_id"])
	assert.EqualValues(t, http.StatusTeapot, completed["status"])
}

func TestTraceMiddleware_ImplicitOK(t *testing.T) {
	buf, base := logger.NewTestLogger(t)

	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	NewTraceMiddleware(base)(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Contains(t, buf.String(), `"status":200`)
}
