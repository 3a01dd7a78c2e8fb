package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/cardhub-api/internal/config"
	"github.com/phrazzld/cardhub-api/internal/domain"
	"github.com/phrazzld/cardhub-api/internal/platform/logger"
)

// MinSecretLength is the shortest accepted HMAC signing secret.
const MinSecretLength = 32

// HMACJWTService is an implementation of JWTService using HMAC-SHA256 signing.
type HMACJWTService struct {
	signingKey []byte
	timeFunc   func() time.Time // Injectable for testing
}

// jwtCustomClaims defines the structure of JWT claims we use
type jwtCustomClaims struct {
	UserID int64  `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Ensure HMACJWTService implements JWTService interface
var _ JWTService = (*HMACJWTService)(nil)

// NewJWTService creates a new JWT service using HMAC-SHA256 signing with the
// configured secret.
func NewJWTService(cfg config.AuthConfig) (*HMACJWTService, error) {
	if len(cfg.JWTSecret) < MinSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d characters", MinSecretLength)
	}

	return &HMACJWTService{
		signingKey: []byte(cfg.JWTSecret),
		timeFunc:   time.Now,
	}, nil
}

// WithTimeFunc returns a copy of the service that reads the clock from f.
func (s *HMACJWTService) WithTimeFunc(f func() time.Time) *HMACJWTService {
	cp := *s
	cp.timeFunc = f
	return &cp
}

// GenerateToken creates a signed JWT with the principal's id and role.
func (s *HMACJWTService) GenerateToken(
	ctx context.Context,
	principalID int64,
	role domain.Role,
	ttl time.Duration,
) (string, time.Time, error) {
	log := logger.FromContext(ctx)

	if principalID <= 0 {
		return "", time.Time{}, fmt.Errorf("%w: principal id must be positive", ErrInvalidToken)
	}
	if !role.Valid() {
		return "", time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidRole, role)
	}
	if ttl <= 0 {
		return "", time.Time{}, fmt.Errorf("token lifetime must be positive, got %s", ttl)
	}

	now := s.timeFunc()
	expiresAt := now.Add(ttl)

	claims := jwtCustomClaims{
		UserID: principalID,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(principalID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.signingKey)
	if err != nil {
		log.Error("failed to sign JWT",
			"error", err,
			"principal_id", principalID,
			"role", role)
		return "", time.Time{}, fmt.Errorf("failed to sign token with HMAC-SHA256: %w", err)
	}

	// exp is encoded at second precision
	return signedToken, claims.ExpiresAt.Time, nil
}

// ValidateToken validates a JWT and returns the claims if valid. There is
// no leeway: a token is rejected from the instant its expiry is reached.
func (s *HMACJWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	log := logger.FromContext(ctx)
	now := s.timeFunc()

	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwtCustomClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug("token validation failed: token expired")
			return nil, ErrExpiredToken
		}
		log.Debug("token validation failed",
			"error", err,
			"error_type", fmt.Sprintf("%T", err))
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwtCustomClaims)
	if !ok || !token.Valid {
		log.Debug("token validation failed: invalid claims")
		return nil, ErrInvalidToken
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil || claims.UserID <= 0 || claims.Subject != strconv.FormatInt(claims.UserID, 10) {
		log.Debug("token validation failed: malformed payload",
			"role", claims.Role,
			"principal_id", claims.UserID)
		return nil, ErrInvalidToken
	}

	result := &Claims{
		PrincipalID: claims.UserID,
		Role:        role,
		Subject:     claims.Subject,
		ExpiresAt:   claims.ExpiresAt.Time,
		ID:          claims.ID,
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}

	log.Debug("token validated successfully",
		"principal_id", result.PrincipalID,
		"role", result.Role,
		"token_id", result.ID)

	return result, nil
}
