package api

import (
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/store"
)

// errNoPrincipal means a protected handler ran without the auth middleware.
var errNoPrincipal = errors.New("no authenticated principal in request context")

// principal returns the authenticated user or writes a 500 and reports false.
func principal(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"An unexpected error occurred", errNoPrincipal)
		return nil, false
	}
	return user, true
}

// pathTaskID parses the {id} URL parameter. An id that is not a positive
// integer cannot name a task, so it is reported as not found.
func pathTaskID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, store.ErrTaskNotFound
	}
	return id, nil
}

// decodeAndValidate reads a JSON body into v and checks its struct tags,
// writing a 400 on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(w, r, v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, shared.ValidationMessage(err), err)
		return false
	}
	return true
}

func isFormRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/x-www-form-urlencoded"
}
