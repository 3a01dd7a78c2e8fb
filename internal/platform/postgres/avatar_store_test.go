package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/cardhub-api/internal/domain"
	"github.com/phrazzld/cardhub-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresAvatarStore(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("get", func(t *testing.T) {
		t.Parallel()
		db, mock := newSQLMock(t)
		s := NewPostgresAvatarStore(db, nil)

		mock.ExpectQuery(`FROM avatars\s+WHERE owner_type = \$1 AND owner_id = \$2`).
			WithArgs(domain.RoleMerchant, int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "owner_type", "owner_id", "object_key", "content_type", "size_bytes", "created_at", "updated_at",
			}).AddRow(int64(1), "merchant", int64(7), "avatars/merchant/7/a.png", "image/png", int64(2048), now, now))

		a, err := s.Get(context.Background(), domain.RoleMerchant, 7)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleMerchant, a.OwnerType)
		assert.Equal(t, "avatars/merchant/7/a.png", a.ObjectKey)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("get missing", func(t *testing.T) {
		t.Parallel()
		db, mock := newSQLMock(t)
		s := NewPostgresAvatarStore(db, nil)

		mock.ExpectQuery(`FROM avatars`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := s.Get(context.Background(), domain.RoleUser, 1)
		assert.ErrorIs(t, err, store.ErrAvatarNotFound)
	})

	t.Run("upsert", func(t *testing.T) {
		t.Parallel()
		db, mock := newSQLMock(t)
		s := NewPostgresAvatarStore(db, nil)

		a := &domain.Avatar{
			OwnerType: domain.RoleUser, OwnerID: 3, ObjectKey: "k", ContentType: "image/gif",
			Size: 10, CreatedAt: now, UpdatedAt: now,
		}
		mock.ExpectQuery(`INSERT INTO avatars .* ON CONFLICT \(owner_type, owner_id\) DO UPDATE`).
			WithArgs(domain.RoleUser, int64(3), "k", "image/gif", int64(10), now, now).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(11), now.Add(-time.Hour)))

		require.NoError(t, s.Upsert(context.Background(), a))
		assert.Equal(t, int64(11), a.ID)
		assert.Equal(t, now.Add(-time.Hour), a.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete missing", func(t *testing.T) {
		t.Parallel()
		db, mock := newSQLMock(t)
		s := NewPostgresAvatarStore(db, nil)

		mock.ExpectExec(`DELETE FROM avatars`).
			WithArgs(domain.RoleUser, int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := s.Delete(context.Background(), domain.RoleUser, 3)
		assert.ErrorIs(t, err, store.ErrAvatarNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
