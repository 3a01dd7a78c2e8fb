package middleware

import (
	"context"

	"github.com/phrazzld/cardhub-api/internal/api/shared"
	"github.com/phrazzld/cardhub-api/internal/domain"
	"github.com/phrazzld/cardhub-api/internal/service/auth"
)

// WithPrincipal returns a copy of ctx carrying the resolved principal.
func WithPrincipal(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, shared.PrincipalKey, u)
}

// GetPrincipal returns the principal attached by AuthGuard.
func GetPrincipal(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(shared.PrincipalKey).(*domain.User)
	return u, ok && u != nil
}

// WithClaims returns a copy of ctx carrying decoded credential claims.
func WithClaims(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, shared.ClaimsKey, c)
}

// GetClaims returns the claims attached by OwnershipGuard.
func GetClaims(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(shared.ClaimsKey).(*auth.Claims)
	return c, ok && c != nil
}
