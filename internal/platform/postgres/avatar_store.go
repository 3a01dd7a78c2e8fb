package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/phrazzld/cardhub-api/internal/domain"
	"github.com/phrazzld/cardhub-api/internal/platform/logger"
	"github.com/phrazzld/cardhub-api/internal/store"
)

// PostgresAvatarStore implements the store.AvatarStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAvatarStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAvatarStore creates a new PostgreSQL implementation of the AvatarStore interface.
func NewPostgresAvatarStore(db store.DBTX, logger *slog.Logger) *PostgresAvatarStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresAvatarStore{
		db:     db,
		logger: logger.With(slog.String("component", "avatar_store")),
	}
}

// Ensure PostgresAvatarStore implements store.AvatarStore interface
var _ store.AvatarStore = (*PostgresAvatarStore)(nil)

// WithTx implements store.AvatarStore.WithTx
func (s *PostgresAvatarStore) WithTx(tx *sql.Tx) store.AvatarStore {
	return &PostgresAvatarStore{db: tx, logger: s.logger}
}

// Get implements store.AvatarStore.Get
func (s *PostgresAvatarStore) Get(ctx context.Context, ownerType domain.Role, ownerID int64) (*domain.Avatar, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, owner_type, owner_id, object_key, content_type, size_bytes, created_at, updated_at
		FROM avatars
		WHERE owner_type = $1 AND owner_id = $2
	`
	var a domain.Avatar
	var ot string
	err := s.db.QueryRowContext(ctx, query, ownerType, ownerID).Scan(
		&a.ID,
		&ot,
		&a.OwnerID,
		&a.ObjectKey,
		&a.ContentType,
		&a.Size,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAvatarNotFound
		}
		log.Error("failed to get avatar",
			slog.String("error", err.Error()),
			slog.String("owner_type", string(ownerType)),
			slog.Int64("owner_id", ownerID))
		return nil, MapError(err)
	}

	a.OwnerType = domain.Role(ot)
	return &a, nil
}

// Upsert implements store.AvatarStore.Upsert
func (s *PostgresAvatarStore) Upsert(ctx context.Context, avatar *domain.Avatar) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO avatars (owner_type, owner_id, object_key, content_type, size_bytes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (owner_type, owner_id) DO UPDATE
		SET object_key = EXCLUDED.object_key,
			content_type = EXCLUDED.content_type,
			size_bytes = EXCLUDED.size_bytes,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`
	err := s.db.QueryRowContext(ctx, query,
		avatar.OwnerType,
		avatar.OwnerID,
		avatar.ObjectKey,
		avatar.ContentType,
		avatar.Size,
		avatar.CreatedAt,
		avatar.UpdatedAt,
	).Scan(&avatar.ID, &avatar.CreatedAt)
	if err != nil {
		log.Error("failed to upsert avatar",
			slog.String("error", err.Error()),
			slog.String("owner_type", string(avatar.OwnerType)),
			slog.Int64("owner_id", avatar.OwnerID))
		return MapError(err)
	}

	return nil
}

// Delete implements store.AvatarStore.Delete
func (s *PostgresAvatarStore) Delete(ctx context.Context, ownerType domain.Role, ownerID int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM avatars WHERE owner_type = $1 AND owner_id = $2`, ownerType, ownerID)
	if err != nil {
		log.Error("failed to delete avatar",
			slog.String("error", err.Error()),
			slog.String("owner_type", string(ownerType)),
			slog.Int64("owner_id", ownerID))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrAvatarNotFound)
}
