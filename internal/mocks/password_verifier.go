package mocks

import (
	"errors"
	"strings"
)

// ErrPasswordMismatch is returned by MockPasswordVerifier on a mismatch.
var ErrPasswordMismatch = errors.New("password mismatch")

// MockPasswordVerifier implements auth.PasswordVerifier against hashes
// produced by MockUserStore ("hashed:<plaintext>").
type MockPasswordVerifier struct {
	CompareFn func(hashedPassword, password string) error

	CompareCallCount        int
	CompareMissingCallCount int
}

// Compare implements auth.PasswordVerifier.
func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	m.CompareCallCount++
	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}
	if strings.TrimPrefix(hashedPassword, HashedPrefix) == password && strings.HasPrefix(hashedPassword, HashedPrefix) {
		return nil
	}
	return ErrPasswordMismatch
}

// CompareMissing implements auth.PasswordVerifier.
func (m *MockPasswordVerifier) CompareMissing(password string) error {
	m.CompareMissingCallCount++
	return ErrPasswordMismatch
}
