package domain

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

const (
	minPasswordLength = 12
	// bcrypt ignores everything past 72 bytes
	maxPasswordLength = 72
)

// User is a principal of the marketplace: a customer, a merchant or an
// administrator. ID is the numeric key carried in bearer credentials and
// ownership paths; PublicID is safe to expose in URLs that must not be
// enumerable.
type User struct {
	ID             int64      `json:"id"`
	PublicID       uuid.UUID  `json:"public_id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	PhoneNumber    string     `json:"phone_number,omitempty"`
	Password       string     `json:"-"` // Plaintext password, used temporarily during registration/updates
	HashedPassword string     `json:"-"`
	EmailVerified  bool       `json:"email_verified"`
	Role           Role       `json:"role"`
	Status         Status     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeletedAt      *time.Time `json:"-"`
}

// NewUser creates an active principal with the given role. The ID is
// assigned by the store on insert. The caller is responsible for hashing
// the password before storing the user.
func NewUser(username, email, phone, password string, role Role) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		PublicID:    uuid.New(),
		Username:    strings.TrimSpace(username),
		Email:       NormalizeEmail(email),
		PhoneNumber: strings.TrimSpace(phone),
		Password:    password,
		Role:        role,
		Status:      StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.Username == "" {
		return ErrEmptyUsername
	}
	if u.Email == "" {
		return ErrEmptyEmail
	}
	if err := validate.Var(u.Email, "email"); err != nil {
		return ErrInvalidEmail
	}
	if !u.Role.Valid() {
		return ErrInvalidRole
	}
	if !u.Status.Valid() {
		return ErrInvalidStatus
	}

	if u.Password != "" {
		return ValidatePassword(u.Password)
	}
	// Existing users carry only the hash.
	if u.HashedPassword == "" {
		return ErrEmptyPassword
	}

	return nil
}

// IsActive reports whether the principal may act. Suspended and deleted
// accounts keep their credentials valid cryptographically but are refused
// by the authorization guard.
func (u *User) IsActive() bool {
	return u.Status == StatusActive && u.DeletedAt == nil
}

// ValidatePassword enforces the length bounds for plaintext passwords.
func ValidatePassword(password string) error {
	switch n := len(password); {
	case n == 0:
		return ErrEmptyPassword
	case n < minPasswordLength:
		return ErrPasswordTooShort
	case n > maxPasswordLength:
		return ErrPasswordTooLong
	}
	return nil
}

// NormalizeEmail lowercases and trims an address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
