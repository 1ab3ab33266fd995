package auth

import (
	"errors"
	"fmt"
)

// Token validation errors. ErrMalformedToken, ErrInvalidSignature and
// ErrWrongTokenType all match ErrInvalidToken under errors.Is;
// ErrExpiredToken is distinct so clients can tell "refresh" from "log in again".
var (
	ErrInvalidToken     = errors.New("invalid authentication token")
	ErrMalformedToken   = fmt.Errorf("%w: malformed", ErrInvalidToken)
	ErrInvalidSignature = fmt.Errorf("%w: signature invalid", ErrInvalidToken)
	ErrWrongTokenType   = fmt.Errorf("%w: wrong token type", ErrInvalidToken)
	ErrExpiredToken     = errors.New("authentication token has expired")
	ErrMissingToken     = errors.New("authentication token is missing")

	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrExpiredRefreshToken = errors.New("refresh token has expired")
)
