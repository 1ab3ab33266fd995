package mocks

import "errors"

// ErrPasswordMismatch is the default Compare failure.
var ErrPasswordMismatch = errors.New("password mismatch")

// MockPasswordVerifier implements auth.PasswordVerifier for testing.
type MockPasswordVerifier struct {
	// ShouldSucceed decides the default Compare result.
	ShouldSucceed bool
	CompareFn     func(hashedPassword, password string) error

	CompareCallCount      int
	CompareDummyCallCount int
}

// Compare implements auth.PasswordVerifier.
func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	m.CompareCallCount++
	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}
	if m.ShouldSucceed {
		return nil
	}
	return ErrPasswordMismatch
}

// CompareDummy implements auth.PasswordVerifier.
func (m *MockPasswordVerifier) CompareDummy(string) {
	m.CompareDummyCallCount++
}
