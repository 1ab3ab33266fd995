package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/tasks-api/internal/service/auth"
)

// Service errors. Callers check them with errors.Is; the API layer maps
// them to status codes.
var (
	// ErrInvalidCredentials is returned for an unknown username and for a
	// wrong password alike, so the response never reveals which one it was.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInvalidOrExpiredToken covers unknown, expired and already used
	// confirmation tokens.
	ErrInvalidOrExpiredToken = errors.New("confirmation token is invalid or has expired")

	// ErrPrincipalNotFound means a cryptographically valid access token
	// names a user that no longer exists. It is an invalid token as far as
	// clients are concerned.
	ErrPrincipalNotFound = fmt.Errorf("%w: subject no longer exists", auth.ErrInvalidToken)
)
