package domain

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	maxUsernameLength = 150
	// bcrypt ignores input beyond 72 bytes.
	maxPasswordBytes = 72
)

// User represents a registered account. Email starts unverified and is
// confirmed through a one-time token.
type User struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Password       string    `json:"-"` // plaintext, only set between registration and hashing
	HashedPassword string    `json:"-"`
	EmailVerified  bool      `json:"email_verified"`
	Profile        Profile   `json:"profile"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a new unverified User with the given credentials.
// The caller is responsible for hashing the password before storing the user.
func NewUser(username, email, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Username:  strings.TrimSpace(username),
		Email:     strings.TrimSpace(email),
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return NewValidationError("id", ErrInvalidID)
	}
	if err := ValidateUsername(u.Username); err != nil {
		return err
	}
	if err := ValidateEmail(u.Email); err != nil {
		return err
	}

	if u.Password != "" {
		if err := ValidatePassword(u.Password); err != nil {
			return err
		}
	} else if u.HashedPassword == "" {
		return NewValidationError("password", ErrEmptyPassword)
	}

	return u.Profile.Validate()
}

// ValidateUsername accepts 1-150 letters, digits and the characters @.+-_.
func ValidateUsername(username string) error {
	if username == "" {
		return NewValidationError("username", ErrEmptyUsername)
	}
	if utf8.RuneCountInString(username) > maxUsernameLength {
		return NewValidationError("username", ErrUsernameTooLong)
	}
	for _, r := range username {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("@.+-_", r) {
			continue
		}
		return NewValidationError("username", ErrInvalidUsername)
	}
	return nil
}

// ValidateEmail performs a structural check: one @, a non-empty local part
// and a dotted domain.
func ValidateEmail(email string) error {
	if email == "" {
		return NewValidationError("email", ErrEmptyEmail)
	}
	local, domainPart, ok := strings.Cut(email, "@")
	if !ok || local == "" || strings.ContainsAny(email, " \t\r\n") || strings.Contains(domainPart, "@") {
		return NewValidationError("email", ErrInvalidEmail)
	}
	dot := strings.Index(domainPart, ".")
	if dot <= 0 || dot == len(domainPart)-1 || strings.HasSuffix(domainPart, ".") {
		return NewValidationError("email", ErrInvalidEmail)
	}
	return nil
}

// ValidatePassword requires a non-empty password that bcrypt can hash
// without truncation.
func ValidatePassword(password string) error {
	if password == "" {
		return NewValidationError("password", ErrEmptyPassword)
	}
	if len(password) > maxPasswordBytes {
		return NewValidationError("password", ErrPasswordTooLong)
	}
	return nil
}
