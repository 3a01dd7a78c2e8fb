package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/cardhub-api/internal/domain"
)

// UserStore defines the interface for principal persistence.
type UserStore interface {
	// Create saves a new user and assigns user.ID.
	// It validates the user and hashes user.Password internally.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by numeric ID.
	// Returns ErrUserNotFound if the user does not exist or is soft-deleted.
	// The returned user contains all fields except the plaintext password.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail retrieves a user by email address (case-insensitive).
	// Returns ErrUserNotFound if the user does not exist or is soft-deleted.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdatePassword hashes and stores a new plaintext password.
	// Returns ErrUserNotFound if the user does not exist.
	UpdatePassword(ctx context.Context, id int64, password string) error

	// MarkEmailVerified sets the email_verified flag.
	// Returns ErrUserNotFound if the user does not exist.
	MarkEmailVerified(ctx context.Context, id int64) error

	// WithTx returns a new UserStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}
