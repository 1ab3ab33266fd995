package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/service"
)

// AuthHandler serves the /auth endpoints.
type AuthHandler struct {
	identity service.IdentityService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(identity service.IdentityService) *AuthHandler {
	return &AuthHandler{identity: identity}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.identity.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, RegisterResponse{
		Username: user.Username,
		Email:    user.Email,
	})
}

// Login handles POST /auth/login. It accepts JSON and form bodies.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if isFormRequest(r) {
		r.Body = http.MaxBytesReader(w, r.Body, shared.MaxBodyBytes)
		if err := r.ParseForm(); err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
			return
		}
		req.Username = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
		if err := shared.ValidateRequest(&req); err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, shared.ValidationMessage(err), err)
			return
		}
	} else if !decodeAndValidate(w, r, &req) {
		return
	}

	pair, err := h.identity.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TokenResponse{Access: pair.Access, Refresh: pair.Refresh})
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	pair, err := h.identity.Refresh(r.Context(), req.Refresh)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TokenResponse{Access: pair.Access, Refresh: pair.Refresh})
}

// ConfirmEmail handles GET /auth/confirm-email/{token}.
func (h *AuthHandler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	if err := h.identity.ConfirmEmail(r.Context(), chi.URLParam(r, "token")); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, StatusResponse{Status: "email confirmed"})
}

// ChangePassword handles POST /auth/password for the authenticated user.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := principal(w, r)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.identity.ChangePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondNoContent(w)
}
