package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// MaxAvatarSize is the largest accepted avatar upload, in bytes.
const MaxAvatarSize = 5 << 20

var avatarContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// Avatar is the profile image of a principal. There is at most one avatar
// per (OwnerType, OwnerID).
type Avatar struct {
	ID          int64     `json:"id"`
	OwnerType   Role      `json:"owner_type"`
	OwnerID     int64     `json:"owner_id"`
	ObjectKey   string    `json:"-"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AvatarContentType validates an upload's filename and size and returns the
// content type to store it under.
func AvatarContentType(filename string, size int64) (string, error) {
	if size <= 0 {
		return "", ErrEmptyFile
	}
	if size > MaxAvatarSize {
		return "", ErrFileTooLarge
	}
	ct, ok := avatarContentTypes[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return "", ErrUnsupportedFileType
	}
	return ct, nil
}

// AvatarExtension returns the canonical file extension for a stored
// content type.
func AvatarExtension(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}
