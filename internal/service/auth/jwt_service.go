package auth

import (
	"context"
	"time"

	"github.com/phrazzld/cardhub-api/internal/domain"
)

// JWTService issues and verifies bearer credentials.
type JWTService interface {
	// GenerateToken creates a signed credential for principalID acting as
	// role, valid for ttl. It returns the token and its expiry.
	GenerateToken(ctx context.Context, principalID int64, role domain.Role, ttl time.Duration) (string, time.Time, error)

	// ValidateToken checks signature, algorithm and expiry and extracts the
	// claims. Returns ErrExpiredToken when now is at or past the expiry and
	// ErrInvalidToken for every other failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the verified content of a bearer credential.
type Claims struct {
	PrincipalID int64
	Role        domain.Role
	Subject     string
	IssuedAt    time.Time
	ExpiresAt   time.Time
	ID          string
}
