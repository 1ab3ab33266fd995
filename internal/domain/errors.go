package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// Field-level failures are reported as *ValidationError, which matches
	// ErrValidation under errors.Is.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidFormat is returned when data is not in the expected format.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	ErrEmptyUsername    = errors.New("username cannot be empty")
	ErrUsernameTooLong  = errors.New("username must be at most 150 characters long")
	ErrInvalidUsername  = errors.New("username may contain only letters, digits and @.+-_")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooLong  = errors.New("password must be at most 72 bytes long")
	ErrEmptyTitle       = errors.New("title cannot be empty")
	ErrTitleTooLong     = errors.New("title must be at most 255 characters long")
	ErrInvalidPriority  = errors.New("priority must be one of Low, Medium, High")
	ErrInvalidStatus    = errors.New("unknown task status")
	ErrInvalidDueDate   = errors.New("due date must be a YYYY-MM-DD calendar date")
	ErrInvalidOrder     = errors.New("order must be a finite number")
	ErrOrderExhausted   = errors.New("no order key is left after the current last task")
	ErrFieldTooLong     = errors.New("value is too long")
	ErrInvalidAvatarURL = errors.New("avatar URL must be an absolute http(s) URL")
)

// ValidationError reports which field of an entity or request failed
// validation and why.
type ValidationError struct {
	Field string
	Err   error
}

// NewValidationError builds a *ValidationError for field.
func NewValidationError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

// Unwrap exposes the underlying field error.
func (e *ValidationError) Unwrap() error { return e.Err }

// Is reports every ValidationError as an ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
