package service

import "errors"

// Sentinel errors returned by the services. The API layer maps them to
// status codes with errors.Is.
var (
	// ErrInvalidCredentials covers an unknown email, a wrong password and an
	// account of a different role. The three are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountInactive indicates a suspended or deleted account tried to
	// log in. Maps to 403.
	ErrAccountInactive = errors.New("account is not active")

	// ErrEmailNotVerified indicates a user logged in with correct
	// credentials before confirming their email. Maps to 403.
	ErrEmailNotVerified = errors.New("email not verified")

	// ErrInvalidAvatar wraps upload validation failures. Maps to 400.
	ErrInvalidAvatar = errors.New("invalid avatar")
)
