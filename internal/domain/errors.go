package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrEmptyUsername       = errors.New("username cannot be empty")
	ErrPasswordTooShort    = errors.New("password must be at least 12 characters long")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrInvalidRole         = errors.New("invalid role")
	ErrInvalidStatus       = errors.New("invalid account status")
	ErrInvalidPurpose      = errors.New("invalid verification purpose")
	ErrInvalidCodeFormat   = errors.New("verification code must be 6 decimal digits")
	ErrEmptyPrincipalID    = errors.New("principal ID cannot be empty")
	ErrUnsupportedFileType = errors.New("only image files are allowed")
	ErrFileTooLarge        = errors.New("file exceeds the maximum allowed size")
	ErrEmptyFile           = errors.New("file is empty")
)
