package domain

import (
	"fmt"
	"time"
)

// Purpose scopes a one-time code to the flow it was issued for. A code
// issued for one purpose never satisfies another.
type Purpose string

const (
	PurposeRegistration  Purpose = "register"
	PurposePasswordReset Purpose = "password_reset"
	PurposeWithdrawal    Purpose = "withdrawal"
)

const (
	// CodeLength is the number of decimal digits in a one-time code.
	CodeLength = 6

	// CodeLifetime is the fixed validity window of a one-time code.
	CodeLifetime = 5 * time.Minute
)

// Valid reports whether p is one of the known purposes.
func (p Purpose) Valid() bool {
	switch p {
	case PurposeRegistration, PurposePasswordReset, PurposeWithdrawal:
		return true
	}
	return false
}

// ParsePurpose converts a wire name into a Purpose.
func ParsePurpose(s string) (Purpose, error) {
	p := Purpose(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPurpose, s)
	}
	return p, nil
}

// VerificationCode is a persisted one-time code. A code is live while
// now < ExpiresAt and it has not been invalidated.
type VerificationCode struct {
	ID        int64
	UserID    int64
	Purpose   Purpose
	Code      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewVerificationCode builds a code record that expires CodeLifetime after now.
func NewVerificationCode(userID int64, purpose Purpose, code string, now time.Time) (*VerificationCode, error) {
	vc := &VerificationCode{
		UserID:    userID,
		Purpose:   purpose,
		Code:      code,
		CreatedAt: now.UTC(),
		ExpiresAt: now.UTC().Add(CodeLifetime),
	}
	if err := vc.Validate(); err != nil {
		return nil, err
	}
	return vc, nil
}

// Validate checks if the VerificationCode has valid data.
func (c *VerificationCode) Validate() error {
	if c.UserID <= 0 {
		return ErrEmptyPrincipalID
	}
	if !c.Purpose.Valid() {
		return ErrInvalidPurpose
	}
	if !IsWellFormedCode(c.Code) {
		return ErrInvalidCodeFormat
	}
	return nil
}

// IsLive reports whether the code can still be redeemed at now.
func (c *VerificationCode) IsLive(now time.Time) bool {
	return now.Before(c.ExpiresAt)
}

// IsWellFormedCode reports whether s is exactly CodeLength ASCII digits.
func IsWellFormedCode(s string) bool {
	if len(s) != CodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
