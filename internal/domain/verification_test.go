package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVerificationCode(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	vc, err := NewVerificationCode(42, PurposePasswordReset, "123456", now)
	require.NoError(t, err)

	assert.Equal(t, int64(42), vc.UserID)
	assert.Equal(t, PurposePasswordReset, vc.Purpose)
	assert.Equal(t, now.Add(5*time.Minute), vc.ExpiresAt)
	assert.True(t, vc.IsLive(now))
	assert.True(t, vc.IsLive(now.Add(5*time.Minute-time.Nanosecond)))
	assert.False(t, vc.IsLive(now.Add(5*time.Minute)))
}

func TestVerificationCodeValidate(t *testing.T) {
	t.Parallel()

	now := time.Now()
	tests := []struct {
		name    string
		userID  int64
		purpose Purpose
		code    string
		wantErr error
	}{
		{"missing user", 0, PurposeRegistration, "000001", ErrEmptyPrincipalID},
		{"unknown purpose", 1, "login", "000001", ErrInvalidPurpose},
		{"five digits", 1, PurposeWithdrawal, "12345", ErrInvalidCodeFormat},
		{"letters", 1, PurposeWithdrawal, "12a456", ErrInvalidCodeFormat},
		{"leading zero ok", 1, PurposeWithdrawal, "012345", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewVerificationCode(tt.userID, tt.purpose, tt.code, now)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParsePurpose(t *testing.T) {
	t.Parallel()

	for _, p := range []Purpose{PurposeRegistration, PurposePasswordReset, PurposeWithdrawal} {
		got, err := ParsePurpose(string(p))
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	_, err := ParsePurpose("Withdrawal")
	assert.ErrorIs(t, err, ErrInvalidPurpose)
}

func TestAvatarContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		filename string
		size     int64
		want     string
		wantErr  error
	}{
		{"me.JPG", 1024, "image/jpeg", nil},
		{"me.jpeg", 1024, "image/jpeg", nil},
		{"me.png", MaxAvatarSize, "image/png", nil},
		{"me.gif", 10, "image/gif", nil},
		{"me.webp", 10, "", ErrUnsupportedFileType},
		{"me", 10, "", ErrUnsupportedFileType},
		{"me.png", MaxAvatarSize + 1, "", ErrFileTooLarge},
		{"me.png", 0, "", ErrEmptyFile},
	}

	for _, tt := range tests {
		got, err := AvatarContentType(tt.filename, tt.size)
		if tt.wantErr != nil {
			assert.ErrorIs(t, err, tt.wantErr, tt.filename)
			continue
		}
		require.NoError(t, err, tt.filename)
		assert.Equal(t, tt.want, got, tt.filename)
	}
}
