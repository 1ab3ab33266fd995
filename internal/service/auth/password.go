package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordVerifier defines the interface for comparing passwords.
type PasswordVerifier interface {
	// Compare returns nil when password matches hashedPassword.
	Compare(hashedPassword, password string) error

	// CompareDummy does the work of a failed Compare without a stored hash.
	CompareDummy(password string)
}

// BcryptVerifier implements PasswordVerifier using bcrypt. It also holds a
// hash of a throwaway password so that a login for an unknown user costs
// the same bcrypt work as a wrong password.
type BcryptVerifier struct {
	dummyHash []byte
}

// NewBcryptVerifier creates a verifier whose dummy hash uses cost.
func NewBcryptVerifier(cost int) (*BcryptVerifier, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("timing-equaliser"), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}
	return &BcryptVerifier{dummyHash: dummy}, nil
}

// Compare implements the PasswordVerifier interface using bcrypt.
func (v *BcryptVerifier) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// CompareDummy implements PasswordVerifier.
func (v *BcryptVerifier) CompareDummy(password string) {
	_ = bcrypt.CompareHashAndPassword(v.dummyHash, []byte(password))
}

// HashPassword returns the bcrypt hash of password at cost.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
