package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/cardhub-api/internal/domain"
)

// AvatarStore persists avatar metadata. Image bytes live in object storage.
type AvatarStore interface {
	// Get returns the avatar of (ownerType, ownerID).
	// Returns ErrAvatarNotFound if none exists.
	Get(ctx context.Context, ownerType domain.Role, ownerID int64) (*domain.Avatar, error)

	// Upsert creates the owner's avatar or replaces the existing one and
	// assigns avatar.ID.
	Upsert(ctx context.Context, avatar *domain.Avatar) error

	// Delete removes the owner's avatar.
	// Returns ErrAvatarNotFound if none exists.
	Delete(ctx context.Context, ownerType domain.Role, ownerID int64) error

	// WithTx returns a new AvatarStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) AvatarStore
}
