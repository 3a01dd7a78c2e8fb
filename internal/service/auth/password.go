package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// PasswordVerifier compares stored password hashes with login attempts.
type PasswordVerifier interface {
	// Compare returns nil when password matches hashedPassword.
	Compare(hashedPassword, password string) error

	// CompareMissing burns the same work as Compare for an account that
	// does not exist and always returns an error, so response timing does
	// not reveal which emails are registered.
	CompareMissing(password string) error
}

// BcryptVerifier implements PasswordVerifier using bcrypt.
type BcryptVerifier struct {
	cost      int
	dummyOnce sync.Once
	dummyHash []byte
}

// NewBcryptVerifier creates a BcryptVerifier whose dummy hash uses cost, which
// should match the cost passwords are stored with.
func NewBcryptVerifier(cost int) *BcryptVerifier {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptVerifier{cost: cost}
}

// Compare implements PasswordVerifier.
func (v *BcryptVerifier) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// CompareMissing implements PasswordVerifier.
func (v *BcryptVerifier) CompareMissing(password string) error {
	v.dummyOnce.Do(func() {
		v.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("cardhub-missing-principal"), v.cost)
	})
	_ = bcrypt.CompareHashAndPassword(v.dummyHash, []byte(password))
	return bcrypt.ErrMismatchedHashAndPassword
}
