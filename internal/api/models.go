package api

import (
	"fmt"
	"time"

	"github.com/phrazzld/cardhub-api/internal/domain"
)

// AccountRequest is the payload for registration and merchant creation.
type AccountRequest struct {
	Username    string `json:"username"     validate:"required,max=50"`
	Email       string `json:"email"        validate:"required,email"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=20"`
	Password    string `json:"password"     validate:"required,min=12,max=72"`
}

// LoginRequest is the payload for the per-role login endpoints.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// EmailRequest asks for a code to be sent to an address.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// EmailCodeRequest redeems a code issued to an address. The code format is
// checked by the verification flow so a malformed code fails the same way
// as a wrong one.
type EmailCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code"  validate:"required"`
}

// ResetPasswordRequest redeems a password-reset code.
type ResetPasswordRequest struct {
	Email       string `json:"email"        validate:"required,email"`
	Code        string `json:"code"         validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=12,max=72"`
}

// CodeRequest redeems a code issued to the authenticated principal.
type CodeRequest struct {
	Code string `json:"code" validate:"required"`
}

// PrincipalResponse is the public view of an account.
type PrincipalResponse struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	PhoneNumber   string    `json:"phone_number,omitempty"`
	Role          string    `json:"role"`
	Status        string    `json:"status"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

func principalResponse(u *domain.User) PrincipalResponse {
	return PrincipalResponse{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		PhoneNumber:   u.PhoneNumber,
		Role:          string(u.Role),
		Status:        string(u.Status),
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
}

// LoginResponse carries a bearer credential and its expiry (RFC 3339).
type LoginResponse struct {
	Token     string            `json:"token"`
	ExpiresAt string            `json:"expires_at"`
	Principal PrincipalResponse `json:"principal"`
}

// CodeSentResponse confirms a code was dispatched. The code itself is never
// returned.
type CodeSentResponse struct {
	Message   string `json:"message"`
	ExpiresAt string `json:"expires_at"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// AvatarResponse is avatar metadata. URL streams the image.
type AvatarResponse struct {
	OwnerType   string    `json:"owner_type"`
	OwnerID     int64     `json:"owner_id"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	URL         string    `json:"url"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func avatarResponse(a *domain.Avatar) AvatarResponse {
	return AvatarResponse{
		OwnerType:   string(a.OwnerType),
		OwnerID:     a.OwnerID,
		ContentType: a.ContentType,
		Size:        a.Size,
		URL:         fmt.Sprintf("/api/avatars/view/%s/%d", a.OwnerType, a.OwnerID),
		UpdatedAt:   a.UpdatedAt,
	}
}
