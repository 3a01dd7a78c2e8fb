package verification

import (
	"errors"

	"github.com/phrazzld/cardhub-api/internal/domain"
)

// Errors returned by the Coordinator. The API layer maps each to a status code.
var (
	// ErrPrincipalNotFound indicates no account is registered under the lookup key.
	ErrPrincipalNotFound = errors.New("principal not found")

	// ErrCodeAlreadyIssued indicates a live code for the same purpose exists.
	// Callers should wait for it to expire before requesting another.
	ErrCodeAlreadyIssued = errors.New("a verification code has already been sent, please try again later")

	// ErrInvalidOrExpiredCode covers a wrong value, a wrong purpose, an
	// expired code and a code already redeemed by another request.
	ErrInvalidOrExpiredCode = errors.New("invalid or expired verification code")

	// ErrDelivery indicates the code was stored but could not be sent.
	// The stored code stays live until it expires.
	ErrDelivery = errors.New("failed to deliver verification code")

	// ErrInvalidPurpose indicates an unknown purpose.
	ErrInvalidPurpose = domain.ErrInvalidPurpose
)
