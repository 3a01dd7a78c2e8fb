package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/cardhub-api/internal/domain"
	"github.com/phrazzld/cardhub-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var userRowColumns = []string{
	"id", "public_id", "username", "email", "phone_number", "hashed_password",
	"email_verified", "role", "status", "created_at", "updated_at", "deleted_at",
}

func TestNewPostgresUserStore_BcryptCost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cost int
		want int
	}{
		{cost: 12, want: 12},
		{cost: 0, want: bcrypt.DefaultCost},
		{cost: 3, want: bcrypt.DefaultCost},
		{cost: 32, want: bcrypt.DefaultCost},
	}

	for _, tt := range tests {
		s := NewPostgresUserStore(nil, tt.cost, nil)
		assert.Equal(t, tt.want, s.bcryptCost)
	}
}

func TestPostgresUserStore_Create(t *testing.T) {
	t.Parallel()

	t.Run("hashes password and assigns id", func(t *testing.T) {
		t.Parallel()
		db, mock := newSQLMock(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)

		u, err := domain.NewUser("alice", "alice@example.com", "", "correct-horse-battery", domain.RoleUser)
		require.NoError(t, err)

		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs(u.PublicID, "alice", "alice@example.com", "", sqlmock.AnyArg(), false,
				domain.RoleUser, domain.StatusActive, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

		require.NoError(t, s.Create(context.Background(), u))
		assert.Equal(t, int64(42), u.ID)
		assert.Empty(t, u.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte("correct-horse-battery")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()
		db, mock := newSQLMock(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)

		u, err := domain.NewUser("bob", "bob@example.com", "", "correct-horse-battery", domain.RoleMerchant)
		require.NoError(t, err)

		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "users_email_key"})

		err = s.Create(context.Background(), u)
		assert.ErrorIs(t, err, store.ErrEmailExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid user is rejected before insert", func(t *testing.T) {
		t.Parallel()
		db, mock := newSQLMock(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)

		err := s.Create(context.Background(), &domain.User{Username: "x", Email: "nope"})
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresUserStore_GetByID(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	publicID := uuid.New()

	db, mock := newSQLMock(t)
	s := NewPostgresUserStore(db, bcrypt.MinCost, nil)

	mock.ExpectQuery(`FROM users WHERE id = \$1 AND deleted_at IS NULL`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(int64(7), publicID.String(), "shop", "shop@example.com", "555", "hash", true,
				"merchant", "suspended", now, now, nil))
	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	u, err := s.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, publicID, u.PublicID)
	assert.Equal(t, domain.RoleMerchant, u.Role)
	assert.Equal(t, domain.StatusSuspended, u.Status)
	assert.False(t, u.IsActive())
	assert.Nil(t, u.DeletedAt)

	_, err = s.GetByID(context.Background(), 8)
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserStore_GetByEmailNormalizes(t *testing.T) {
	t.Parallel()

	db, mock := newSQLMock(t)
	s := NewPostgresUserStore(db, bcrypt.MinCost, nil)

	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("carol@example.com").
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	_, err := s.GetByEmail(context.Background(), "  Carol@Example.COM ")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserStore_Updates(t *testing.T) {
	t.Parallel()

	t.Run("update password", func(t *testing.T) {
		t.Parallel()
		db, mock := newSQLMock(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)

		mock.ExpectExec(`UPDATE users\s+SET hashed_password = \$1`).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.UpdatePassword(context.Background(), 42, "a-brand-new-password"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update password rejects short password", func(t *testing.T) {
		t.Parallel()
		db, mock := newSQLMock(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)

		err := s.UpdatePassword(context.Background(), 42, "short")
		assert.ErrorIs(t, err, domain.ErrPasswordTooShort)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("mark verified missing user", func(t *testing.T) {
		t.Parallel()
		db, mock := newSQLMock(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)

		mock.ExpectExec(`UPDATE users\s+SET email_verified = TRUE`).
			WithArgs(sqlmock.AnyArg(), int64(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := s.MarkEmailVerified(context.Background(), 99)
		assert.ErrorIs(t, err, store.ErrUserNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
