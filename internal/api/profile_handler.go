package api

import (
	"net/http"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/service"
)

// ProfileHandler serves /tasks/profile.
type ProfileHandler struct {
	identity service.IdentityService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(identity service.IdentityService) *ProfileHandler {
	return &ProfileHandler{identity: identity}
}

// Get handles GET /tasks/profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := principal(w, r)
	if !ok {
		return
	}
	current, err := h.identity.GetProfile(r.Context(), user.ID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toProfileResponse(current))
}

// Update handles PUT /tasks/profile.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := principal(w, r)
	if !ok {
		return
	}
	var req ProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.identity.UpdateProfile(r.Context(), user.ID, domain.Profile{
		FullName:  req.FullName,
		Bio:       req.Bio,
		Location:  req.Location,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toProfileResponse(updated))
}
