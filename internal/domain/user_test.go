package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	user, err := NewUser("  alice ", " Alice@Example.com ", "555-0100", "correct-horse-battery", RoleUser)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, user.PublicID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, RoleUser, user.Role)
	assert.Equal(t, StatusActive, user.Status)
	assert.False(t, user.EmailVerified)
	assert.False(t, user.CreatedAt.IsZero())
	assert.True(t, user.IsActive())
}

func TestUserValidate(t *testing.T) {
	t.Parallel()

	valid := func() User {
		return User{
			Username:       "bob",
			Email:          "bob@example.com",
			HashedPassword: "$2a$10$abcdefghijklmnopqrstuv",
			Role:           RoleMerchant,
			Status:         StatusActive,
		}
	}

	tests := []struct {
		name    string
		mutate  func(u *User)
		wantErr error
	}{
		{name: "valid", mutate: func(u *User) {}},
		{name: "empty username", mutate: func(u *User) { u.Username = "" }, wantErr: ErrEmptyUsername},
		{name: "empty email", mutate: func(u *User) { u.Email = "" }, wantErr: ErrEmptyEmail},
		{name: "bad email", mutate: func(u *User) { u.Email = "not-an-email" }, wantErr: ErrInvalidEmail},
		{name: "bad role", mutate: func(u *User) { u.Role = "owner" }, wantErr: ErrInvalidRole},
		{name: "bad status", mutate: func(u *User) { u.Status = "banned" }, wantErr: ErrInvalidStatus},
		{name: "no password", mutate: func(u *User) { u.HashedPassword = "" }, wantErr: ErrEmptyPassword},
		{name: "short plaintext", mutate: func(u *User) { u.Password = "short" }, wantErr: ErrPasswordTooShort},
		{name: "long plaintext", mutate: func(u *User) { u.Password = strings.Repeat("a", 73) }, wantErr: ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := valid()
			tt.mutate(&u)
			err := u.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUserIsActive(t *testing.T) {
	t.Parallel()

	deletedAt := time.Now()
	assert.True(t, (&User{Status: StatusActive}).IsActive())
	assert.False(t, (&User{Status: StatusSuspended}).IsActive())
	assert.False(t, (&User{Status: StatusDeleted}).IsActive())
	assert.False(t, (&User{Status: StatusActive, DeletedAt: &deletedAt}).IsActive())
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"user", "merchant", "admin"} {
		r, err := ParseRole(s)
		require.NoError(t, err)
		assert.Equal(t, Role(s), r)
	}

	for _, s := range []string{"", "User", "guest", "admins"} {
		_, err := ParseRole(s)
		assert.ErrorIs(t, err, ErrInvalidRole, s)
	}
}
