package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/cardhub-api/internal/domain"
	"github.com/phrazzld/cardhub-api/internal/platform/logger"
	objstore "github.com/phrazzld/cardhub-api/internal/platform/s3"
	"github.com/phrazzld/cardhub-api/internal/store"
)

// ObjectStore holds avatar bytes.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Get(ctx context.Context, key string) (*objstore.Object, error)
	Delete(ctx context.Context, key string) error
}

// AvatarService manages the single avatar of each principal. Metadata lives
// in the AvatarStore and bytes in the ObjectStore.
type AvatarService struct {
	avatars store.AvatarStore
	objects ObjectStore
	logger  *slog.Logger
}

// NewAvatarService creates an AvatarService.
func NewAvatarService(avatars store.AvatarStore, objects ObjectStore, logger *slog.Logger) *AvatarService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AvatarService{
		avatars: avatars,
		objects: objects,
		logger:  logger.With(slog.String("component", "avatar_service")),
	}
}

// Upload stores body as the avatar of (ownerType, ownerID), replacing any
// previous one.
func (s *AvatarService) Upload(
	ctx context.Context,
	ownerType domain.Role,
	ownerID int64,
	filename string,
	size int64,
	body io.Reader,
) (*domain.Avatar, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("owner_type", string(ownerType)),
		slog.Int64("owner_id", ownerID))

	contentType, err := domain.AvatarContentType(filename, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAvatar, err)
	}

	var previousKey string
	prev, err := s.avatars.Get(ctx, ownerType, ownerID)
	switch {
	case err == nil:
		previousKey = prev.ObjectKey
	case !errors.Is(err, store.ErrAvatarNotFound):
		return nil, fmt.Errorf("failed to load avatar: %w", err)
	}

	key := fmt.Sprintf("avatars/%s/%d/%s%s", ownerType, ownerID, uuid.NewString(), domain.AvatarExtension(contentType))
	if err := s.objects.Put(ctx, key, contentType, body, size); err != nil {
		log.Error("failed to upload avatar", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	now := time.Now().UTC()
	avatar := &domain.Avatar{
		OwnerType:   ownerType,
		OwnerID:     ownerID,
		ObjectKey:   key,
		ContentType: contentType,
		Size:        size,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.avatars.Upsert(ctx, avatar); err != nil {
		s.removeObject(ctx, log, key)
		return nil, fmt.Errorf("failed to save avatar: %w", err)
	}

	if previousKey != "" && previousKey != key {
		s.removeObject(ctx, log, previousKey)
	}

	log.Info("avatar updated", slog.Int64("size", size))
	return avatar, nil
}

// Get returns avatar metadata. Returns store.ErrAvatarNotFound if there is none.
func (s *AvatarService) Get(ctx context.Context, ownerType domain.Role, ownerID int64) (*domain.Avatar, error) {
	return s.avatars.Get(ctx, ownerType, ownerID)
}

// Open returns avatar metadata and a reader over its bytes. The caller must
// close the reader.
func (s *AvatarService) Open(ctx context.Context, ownerType domain.Role, ownerID int64) (*domain.Avatar, io.ReadCloser, error) {
	avatar, err := s.avatars.Get(ctx, ownerType, ownerID)
	if err != nil {
		return nil, nil, err
	}

	obj, err := s.objects.Get(ctx, avatar.ObjectKey)
	if err != nil {
		if errors.Is(err, objstore.ErrObjectNotFound) {
			logger.FromContextOrDefault(ctx, s.logger).Warn("avatar object missing",
				slog.String("object_key", avatar.ObjectKey))
			return nil, nil, store.ErrAvatarNotFound
		}
		return nil, nil, fmt.Errorf("failed to read avatar: %w", err)
	}
	return avatar, obj.Body, nil
}

// Delete removes the avatar of (ownerType, ownerID).
func (s *AvatarService) Delete(ctx context.Context, ownerType domain.Role, ownerID int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("owner_type", string(ownerType)),
		slog.Int64("owner_id", ownerID))

	avatar, err := s.avatars.Get(ctx, ownerType, ownerID)
	if err != nil {
		return err
	}
	if err := s.avatars.Delete(ctx, ownerType, ownerID); err != nil {
		return err
	}
	s.removeObject(ctx, log, avatar.ObjectKey)

	log.Info("avatar deleted")
	return nil
}

// removeObject is best effort; an orphaned object is harmless.
func (s *AvatarService) removeObject(ctx context.Context, log *slog.Logger, key string) {
	if err := s.objects.Delete(ctx, key); err != nil {
		log.Warn("failed to delete avatar object",
			slog.String("error", err.Error()),
			slog.String("object_key", key))
	}
}
