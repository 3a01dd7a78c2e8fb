package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/phrazzld/cardhub-api/internal/domain"
)

// CodeStore persists one-time verification codes. All lookups take the
// caller's notion of "now" so liveness is decided by a single clock.
type CodeStore interface {
	// FindLive returns any code for (userID, purpose) with ExpiresAt after now.
	// Returns ErrCodeNotFound if none exists.
	FindLive(ctx context.Context, userID int64, purpose domain.Purpose, now time.Time) (*domain.VerificationCode, error)

	// Create inserts code unconditionally and assigns code.ID.
	// Uniqueness of live codes is the caller's responsibility.
	Create(ctx context.Context, code *domain.VerificationCode) error

	// FindMatching returns the live code for (userID, purpose) whose value
	// equals code. Returns ErrCodeNotFound if there is none.
	FindMatching(ctx context.Context, userID int64, code string, purpose domain.Purpose, now time.Time) (*domain.VerificationCode, error)

	// Invalidate removes the record by ID. It succeeds for exactly one
	// caller: once the record is gone every later call returns
	// ErrCodeNotFound, which is what makes redemption single-use under
	// concurrency.
	Invalidate(ctx context.Context, code *domain.VerificationCode) error

	// PurgeExpired deletes every code with ExpiresAt at or before now and
	// returns how many were removed. It is idempotent.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)

	// WithTx returns a new CodeStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) CodeStore
}
