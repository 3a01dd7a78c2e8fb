package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/phrazzld/cardhub-api/internal/domain"
	"github.com/phrazzld/cardhub-api/internal/platform/logger"
	"github.com/phrazzld/cardhub-api/internal/store"
)

// PostgresCodeStore implements the store.CodeStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCodeStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCodeStore creates a new PostgreSQL implementation of the CodeStore interface.
func NewPostgresCodeStore(db store.DBTX, logger *slog.Logger) *PostgresCodeStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCodeStore{
		db:     db,
		logger: logger.With(slog.String("component", "code_store")),
	}
}

// Ensure PostgresCodeStore implements store.CodeStore interface
var _ store.CodeStore = (*PostgresCodeStore)(nil)

// WithTx implements store.CodeStore.WithTx
func (s *PostgresCodeStore) WithTx(tx *sql.Tx) store.CodeStore {
	return &PostgresCodeStore{db: tx, logger: s.logger}
}

// FindLive implements store.CodeStore.FindLive
func (s *PostgresCodeStore) FindLive(
	ctx context.Context,
	userID int64,
	purpose domain.Purpose,
	now time.Time,
) (*domain.VerificationCode, error) {
	query := `
		SELECT id, user_id, purpose, code, expires_at, created_at
		FROM verification_codes
		WHERE user_id = $1 AND purpose = $2 AND expires_at > $3
		ORDER BY expires_at DESC
		LIMIT 1
	`
	return s.scanOne(ctx, query, userID, purpose, now.UTC())
}

// FindMatching implements store.CodeStore.FindMatching
func (s *PostgresCodeStore) FindMatching(
	ctx context.Context,
	userID int64,
	code string,
	purpose domain.Purpose,
	now time.Time,
) (*domain.VerificationCode, error) {
	query := `
		SELECT id, user_id, purpose, code, expires_at, created_at
		FROM verification_codes
		WHERE user_id = $1 AND code = $2 AND purpose = $3 AND expires_at > $4
		ORDER BY expires_at DESC
		LIMIT 1
	`
	return s.scanOne(ctx, query, userID, code, purpose, now.UTC())
}

func (s *PostgresCodeStore) scanOne(ctx context.Context, query string, args ...any) (*domain.VerificationCode, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var vc domain.VerificationCode
	var purpose string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&vc.ID,
		&vc.UserID,
		&purpose,
		&vc.Code,
		&vc.ExpiresAt,
		&vc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCodeNotFound
		}
		log.Error("failed to query verification code", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	vc.Purpose = domain.Purpose(purpose)
	return &vc, nil
}

// Create implements store.CodeStore.Create
func (s *PostgresCodeStore) Create(ctx context.Context, code *domain.VerificationCode) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := code.Validate(); err != nil {
		log.Warn("verification code validation failed", slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO verification_codes (user_id, purpose, code, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		code.UserID,
		code.Purpose,
		code.Code,
		code.ExpiresAt,
		code.CreatedAt,
	).Scan(&code.ID)
	if err != nil {
		log.Error("failed to create verification code",
			slog.String("error", err.Error()),
			slog.Int64("user_id", code.UserID),
			slog.String("purpose", string(code.Purpose)))
		return MapError(err)
	}

	log.Debug("verification code created",
		slog.Int64("code_id", code.ID),
		slog.Int64("user_id", code.UserID),
		slog.String("purpose", string(code.Purpose)))
	return nil
}

// Invalidate implements store.CodeStore.Invalidate
func (s *PostgresCodeStore) Invalidate(ctx context.Context, code *domain.VerificationCode) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM verification_codes WHERE id = $1`, code.ID)
	if err != nil {
		log.Error("failed to invalidate verification code",
			slog.String("error", err.Error()),
			slog.Int64("code_id", code.ID))
		return MapError(err)
	}

	// Zero rows means another redeemer won the race.
	if err := CheckRowsAffected(result, store.ErrCodeNotFound); err != nil {
		log.Debug("verification code already invalidated", slog.Int64("code_id", code.ID))
		return err
	}

	return nil
}

// PurgeExpired implements store.CodeStore.PurgeExpired
func (s *PostgresCodeStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM verification_codes WHERE expires_at <= $1`, now.UTC())
	if err != nil {
		log.Error("failed to purge expired verification codes", slog.String("error", err.Error()))
		return 0, MapError(err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}
