package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/service"
	"github.com/phrazzld/tasks-api/internal/service/auth"
	"github.com/phrazzld/tasks-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing token", auth.ErrMissingToken, http.StatusUnauthorized},
		{"malformed token", auth.ErrMalformedToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"bad refresh", fmt.Errorf("%w: %w", auth.ErrInvalidRefreshToken, auth.ErrMalformedToken), http.StatusUnauthorized},
		{"principal gone", service.ErrPrincipalNotFound, http.StatusUnauthorized},
		{"bad credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"task not found", fmt.Errorf("failed to get task 7: %w", store.ErrTaskNotFound), http.StatusNotFound},
		{"user not found", store.ErrUserNotFound, http.StatusNotFound},
		{"duplicate username", store.ErrUsernameExists, http.StatusBadRequest},
		{"field validation", domain.NewValidationError("title", domain.ErrEmptyTitle), http.StatusBadRequest},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"confirmation token", service.ErrInvalidOrExpiredToken, http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
		{"transaction", store.ErrTransactionFailed, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "An unexpected error occurred"},
		{"expired", auth.ErrExpiredToken, "Token has expired"},
		{"wrong type", auth.ErrWrongTokenType, "Invalid token"},
		{"expired refresh", fmt.Errorf("%w: %w", auth.ErrExpiredRefreshToken, auth.ErrExpiredToken), "Invalid refresh token"},
		{"credentials", service.ErrInvalidCredentials, "Invalid username or password"},
		{"task", store.ErrTaskNotFound, "Task not found"},
		{"email taken", store.ErrEmailExists, "A user with that email already exists"},
		{"field", domain.NewValidationError("priority", domain.ErrInvalidPriority), "priority: priority must be one of Low, Medium, High"},
		{"internal detail hidden", errors.New("pq: relation \"tasks\" does not exist"), "An unexpected error occurred"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestHandleAPIError_UnauthorizedCarriesChallenge(t *testing.T) {
	t.Parallel()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)

	HandleAPIError(w, r, service.ErrInvalidCredentials)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, shared.BearerChallenge, w.Header().Get("WWW-Authenticate"))
	assert.Contains(t, w.Body.String(), "Invalid username or password")
}

func TestPathTaskID(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"abc", "0", "-3", "1.5", "99999999999999999999"} {
		r := httptest.NewRequest(http.MethodGet, "/api/tasks/"+raw, nil)
		r = withURLParam(r, "id", raw)
		_, err := pathTaskID(r)
		assert.ErrorIs(t, err, store.ErrTaskNotFound, raw)
	}

	r := withURLParam(httptest.NewRequest(http.MethodGet, "/api/tasks/42", nil), "id", "42")
	id, err := pathTaskID(r)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), id)
}
