package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/cardhub-api/internal/api/shared"
	"github.com/phrazzld/cardhub-api/internal/domain"
	"github.com/phrazzld/cardhub-api/internal/service/auth"
	"github.com/phrazzld/cardhub-api/internal/store"
)

// Guard names reported to the Observer.
const (
	GuardAuth      = "auth"
	GuardOwnership = "ownership"
)

var (
	errMissingHeader = errors.New("authorization header missing")
	errBadScheme     = errors.New("authorization header is not a bearer token")
)

// PrincipalSource re-fetches a principal by id. store.UserStore satisfies it.
type PrincipalSource interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errMissingHeader
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errBadScheme
	}
	return parts[1], nil
}

// authenticate runs the header and signature checks shared by both guards.
// It writes the 401 response itself and returns nil claims on failure.
func authenticate(
	w http.ResponseWriter,
	r *http.Request,
	jwt auth.JWTService,
	deny func(http.ResponseWriter, *http.Request, int, string, error),
) *auth.Claims {
	token, err := bearerToken(r)
	if err != nil {
		msg := "Invalid authorization format"
		if errors.Is(err, errMissingHeader) {
			msg = "Authorization header required"
		}
		deny(w, r, http.StatusUnauthorized, msg, err)
		return nil
	}

	claims, err := jwt.ValidateToken(r.Context(), token)
	if err != nil {
		msg := "Invalid token"
		if errors.Is(err, auth.ErrExpiredToken) {
			msg = "Token expired"
		}
		deny(w, r, http.StatusUnauthorized, msg, err)
		return nil
	}
	return claims
}

// AuthGuard authenticates the bearer credential, re-checks that the principal
// still exists and is active, and enforces a role allow-list.
type AuthGuard struct {
	jwt      auth.JWTService
	users    PrincipalSource
	observer Observer
	logger   *slog.Logger
}

// NewAuthGuard creates an AuthGuard. observer may be nil.
func NewAuthGuard(jwt auth.JWTService, users PrincipalSource, observer Observer, logger *slog.Logger) *AuthGuard {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthGuard{
		jwt:      jwt,
		users:    users,
		observer: observerOrNop(observer),
		logger:   logger.With(slog.String("component", "auth_guard")),
	}
}

// RequireRoles returns middleware admitting active principals whose role is
// in roles. An empty list admits any active principal. The principal is
// available downstream through GetPrincipal.
func (g *AuthGuard) RequireRoles(roles ...domain.Role) func(http.Handler) http.Handler {
	allowed := slices.Clone(roles)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := authenticate(w, r, g.jwt, g.deny)
			if claims == nil {
				return
			}

			principal, err := g.users.GetByID(r.Context(), claims.PrincipalID)
			switch {
			case errors.Is(err, store.ErrUserNotFound):
				g.deny(w, r, http.StatusUnauthorized, "Invalid token", err)
				return
			case err != nil:
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
				return
			}

			if !principal.IsActive() {
				g.deny(w, r, http.StatusForbidden, "Account is not active", nil)
				return
			}
			if len(allowed) > 0 && !slices.Contains(allowed, principal.Role) {
				g.deny(w, r, http.StatusForbidden, "Insufficient permissions", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

func (g *AuthGuard) deny(w http.ResponseWriter, r *http.Request, status int, msg string, err error) {
	g.observer.ObserveGuardDenial(GuardAuth, status)
	shared.RespondWithErrorAndLog(w, r, status, msg, err, shared.WithElevatedLogLevel())
}

// OwnershipGuard admits a request only when the credential's role and
// principal id equal the {type} and {id} path parameters. It trusts the
// credential alone and does not consult the principal store, so a suspended
// principal keeps access to its own resources until the credential expires.
type OwnershipGuard struct {
	jwt      auth.JWTService
	observer Observer
}

// NewOwnershipGuard creates an OwnershipGuard. observer may be nil.
func NewOwnershipGuard(jwt auth.JWTService, observer Observer) *OwnershipGuard {
	return &OwnershipGuard{jwt: jwt, observer: observerOrNop(observer)}
}

// Protect wraps next with the ownership check. Decoded claims are available
// downstream through GetClaims.
func (g *OwnershipGuard) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := authenticate(w, r, g.jwt, g.deny)
		if claims == nil {
			return
		}

		resourceType, err := domain.ParseRole(chi.URLParam(r, "type"))
		if err != nil {
			g.deny(w, r, http.StatusBadRequest, "Invalid resource type", err)
			return
		}

		// A non-numeric id can never match a principal id.
		resourceID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || claims.Role != resourceType || claims.PrincipalID != resourceID {
			g.deny(w, r, http.StatusForbidden, "Access denied", nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

func (g *OwnershipGuard) deny(w http.ResponseWriter, r *http.Request, status int, msg string, err error) {
	g.observer.ObserveGuardDenial(GuardOwnership, status)
	shared.RespondWithErrorAndLog(w, r, status, msg, err, shared.WithElevatedLogLevel())
}
