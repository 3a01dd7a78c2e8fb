package service_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/cardhub-api/internal/config"
	"github.com/phrazzld/cardhub-api/internal/domain"
	"github.com/phrazzld/cardhub-api/internal/mocks"
	"github.com/phrazzld/cardhub-api/internal/service"
	"github.com/phrazzld/cardhub-api/internal/service/verification"
	"github.com/phrazzld/cardhub-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodPassword = "correct-horse-battery"

type accountFixture struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	users     *mocks.MockUserStore
	codes     *mocks.MockCodeStore
	notifier  *mocks.MockNotifier
	jwt       *mocks.MockJWTService
	passwords *mocks.MockPasswordVerifier
	svc       *service.AccountService
	issuedTTL time.Duration
}

func newAccountFixture(t *testing.T) *accountFixture {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	f := &accountFixture{
		db:        db,
		sqlMock:   sqlMock,
		users:     mocks.NewMockUserStore(),
		codes:     mocks.NewMockCodeStore(),
		notifier:  &mocks.MockNotifier{},
		passwords: &mocks.MockPasswordVerifier{},
	}
	f.jwt = &mocks.MockJWTService{
		GenerateTokenFn: func(_ context.Context, _ int64, _ domain.Role, ttl time.Duration) (string, time.Time, error) {
			f.issuedTTL = ttl
			return "signed-token", time.Now().Add(ttl), nil
		},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	coord := verification.NewCoordinator(f.users, f.codes, f.notifier, logger)
	f.svc = service.NewAccountService(db, f.users, coord, f.jwt, f.passwords, config.AuthConfig{
		UserTokenLifetimeMinutes:     60,
		MerchantTokenLifetimeMinutes: 1440,
		AdminTokenLifetimeMinutes:    30,
	}, logger)
	return f
}

func (f *accountFixture) addUser(role domain.Role, email string, verified bool, status domain.Status) int64 {
	return f.users.Add(&domain.User{
		Username:       "someone",
		Email:          email,
		HashedPassword: mocks.HashedPrefix + goodPassword,
		Role:           role,
		Status:         status,
		EmailVerified:  verified,
	})
}

func TestAccountService_Register(t *testing.T) {
	t.Parallel()

	t.Run("creates unverified user", func(t *testing.T) {
		t.Parallel()
		f := newAccountFixture(t)

		u, err := f.svc.Register(context.Background(), service.NewAccount{
			Username: "bob", Email: "Bob@Example.com", PhoneNumber: "+15550100", Password: goodPassword,
		})
		require.NoError(t, err)
		assert.NotZero(t, u.ID)
		assert.Equal(t, "bob@example.com", u.Email)
		assert.Equal(t, domain.RoleUser, u.Role)
		assert.False(t, u.EmailVerified)
		assert.Empty(t, u.Password)
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()
		f := newAccountFixture(t)
		f.addUser(domain.RoleUser, "bob@example.com", true, domain.StatusActive)

		_, err := f.svc.Register(context.Background(), service.NewAccount{
			Username: "bob", Email: "bob@example.com", Password: goodPassword,
		})
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})

	t.Run("validation failure", func(t *testing.T) {
		t.Parallel()
		f := newAccountFixture(t)

		_, err := f.svc.Register(context.Background(), service.NewAccount{
			Username: "bob", Email: "bob@example.com", Password: "short",
		})
		assert.ErrorIs(t, err, domain.ErrPasswordTooShort)
	})
}

func TestAccountService_CreateMerchantIsVerified(t *testing.T) {
	t.Parallel()
	f := newAccountFixture(t)

	m, err := f.svc.CreateMerchant(context.Background(), service.NewAccount{
		Username: "shop", Email: "shop@example.com", PhoneNumber: "+15550101", Password: goodPassword,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMerchant, m.Role)
	assert.True(t, m.EmailVerified)
}

func TestAccountService_SeedAdmin(t *testing.T) {
	t.Parallel()
	f := newAccountFixture(t)
	ctx := context.Background()

	first, err := f.svc.SeedAdmin(ctx, "root@example.com", goodPassword)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, first.Role)

	second, err := f.svc.SeedAdmin(ctx, "root@example.com", "a-different-password")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestAccountService_Login(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		role     domain.Role
		verified bool
		status   domain.Status
		loginAs  domain.Role
		password string
		wantErr  error
		wantTTL  time.Duration
	}{
		{"verified user", domain.RoleUser, true, domain.StatusActive, domain.RoleUser, goodPassword, nil, time.Hour},
		{"merchant", domain.RoleMerchant, true, domain.StatusActive, domain.RoleMerchant, goodPassword, nil, 24 * time.Hour},
		{"admin", domain.RoleAdmin, true, domain.StatusActive, domain.RoleAdmin, goodPassword, nil, 30 * time.Minute},
		{"wrong password", domain.RoleUser, true, domain.StatusActive, domain.RoleUser, "wrong-password-here", service.ErrInvalidCredentials, 0},
		{"wrong role", domain.RoleMerchant, true, domain.StatusActive, domain.RoleAdmin, goodPassword, service.ErrInvalidCredentials, 0},
		{"unverified user", domain.RoleUser, false, domain.StatusActive, domain.RoleUser, goodPassword, service.ErrEmailNotVerified, 0},
		{"unverified merchant may log in", domain.RoleMerchant, false, domain.StatusActive, domain.RoleMerchant, goodPassword, nil, 24 * time.Hour},
		{"suspended", domain.RoleUser, true, domain.StatusSuspended, domain.RoleUser, goodPassword, service.ErrAccountInactive, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newAccountFixture(t)
			id := f.addUser(tt.role, "p@example.com", tt.verified, tt.status)

			sess, err := f.svc.Login(context.Background(), tt.loginAs, "p@example.com", tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, sess)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "signed-token", sess.Token)
			assert.Equal(t, id, sess.Principal.ID)
			assert.Equal(t, tt.wantTTL, f.issuedTTL)
		})
	}

	t.Run("unknown email burns a comparison", func(t *testing.T) {
		t.Parallel()
		f := newAccountFixture(t)

		_, err := f.svc.Login(context.Background(), domain.RoleUser, "nobody@example.com", goodPassword)
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
		assert.Equal(t, 1, f.passwords.CompareMissingCallCount)
	})

	t.Run("token failure", func(t *testing.T) {
		t.Parallel()
		f := newAccountFixture(t)
		f.addUser(domain.RoleUser, "p@example.com", true, domain.StatusActive)
		signErr := errors.New("signing failed")
		f.jwt.GenerateTokenFn = func(context.Context, int64, domain.Role, time.Duration) (string, time.Time, error) {
			return "", time.Time{}, signErr
		}

		_, err := f.svc.Login(context.Background(), domain.RoleUser, "p@example.com", goodPassword)
		assert.ErrorIs(t, err, signErr)
	})
}

func TestAccountService_ForgotAndResetPassword(t *testing.T) {
	t.Parallel()

	t.Run("code resets the password once", func(t *testing.T) {
		t.Parallel()
		f := newAccountFixture(t)
		ctx := context.Background()
		id := f.addUser(domain.RoleUser, "p@example.com", true, domain.StatusActive)

		expiresAt, err := f.svc.RequestCode(ctx, "p@example.com", domain.PurposePasswordReset)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(domain.CodeLifetime), expiresAt, 5*time.Second)
		n, ok := f.notifier.Last()
		require.True(t, ok)

		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectCommit()
		require.NoError(t, f.svc.ResetPassword(ctx, "p@example.com", n.Code, "a-brand-new-password"))

		u, err := f.users.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, mocks.HashedPrefix+"a-brand-new-password", u.HashedPassword)

		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectRollback()
		err = f.svc.ResetPassword(ctx, "p@example.com", n.Code, "yet-another-password")
		assert.ErrorIs(t, err, verification.ErrInvalidOrExpiredCode)
		assert.NoError(t, f.sqlMock.ExpectationsWereMet())
	})

	t.Run("weak password is rejected before the code is consumed", func(t *testing.T) {
		t.Parallel()
		f := newAccountFixture(t)
		ctx := context.Background()
		f.addUser(domain.RoleUser, "p@example.com", true, domain.StatusActive)

		_, err := f.svc.RequestCode(ctx, "p@example.com", domain.PurposePasswordReset)
		require.NoError(t, err)
		n, _ := f.notifier.Last()

		err = f.svc.ResetPassword(ctx, "p@example.com", n.Code, "short")
		assert.ErrorIs(t, err, domain.ErrPasswordTooShort)
		assert.Len(t, f.codes.All(), 1)
		assert.NoError(t, f.sqlMock.ExpectationsWereMet())
	})

	t.Run("failed update rolls back", func(t *testing.T) {
		t.Parallel()
		f := newAccountFixture(t)
		ctx := context.Background()
		f.addUser(domain.RoleUser, "p@example.com", true, domain.StatusActive)
		dbErr := errors.New("disk full")
		f.users.UpdatePasswordFn = func(context.Context, int64, string) error { return dbErr }

		_, err := f.svc.RequestCode(ctx, "p@example.com", domain.PurposePasswordReset)
		require.NoError(t, err)
		n, _ := f.notifier.Last()

		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectRollback()
		err = f.svc.ResetPassword(ctx, "p@example.com", n.Code, "a-brand-new-password")
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, f.sqlMock.ExpectationsWereMet())
	})

	t.Run("unknown email", func(t *testing.T) {
		t.Parallel()
		f := newAccountFixture(t)

		_, err := f.svc.RequestCode(context.Background(), "ghost@example.com", domain.PurposePasswordReset)
		assert.ErrorIs(t, err, verification.ErrPrincipalNotFound)
	})
}

func TestAccountService_VerifyEmail(t *testing.T) {
	t.Parallel()
	f := newAccountFixture(t)
	ctx := context.Background()
	id := f.addUser(domain.RoleUser, "new@example.com", false, domain.StatusActive)

	_, err := f.svc.RequestCode(ctx, "new@example.com", domain.PurposeRegistration)
	require.NoError(t, err)
	n, _ := f.notifier.Last()

	// A registration code does not unlock a password reset.
	f.sqlMock.ExpectBegin()
	f.sqlMock.ExpectRollback()
	err = f.svc.ResetPassword(ctx, "new@example.com", n.Code, "a-brand-new-password")
	assert.ErrorIs(t, err, verification.ErrInvalidOrExpiredCode)

	f.sqlMock.ExpectBegin()
	f.sqlMock.ExpectCommit()
	require.NoError(t, f.svc.VerifyEmail(ctx, "new@example.com", n.Code))

	u, err := f.users.GetByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, u.EmailVerified)
	assert.NoError(t, f.sqlMock.ExpectationsWereMet())

	_, err = f.svc.Login(ctx, domain.RoleUser, "new@example.com", goodPassword)
	assert.NoError(t, err)
}

func TestAccountService_WithdrawalCode(t *testing.T) {
	t.Parallel()
	f := newAccountFixture(t)
	ctx := context.Background()
	f.addUser(domain.RoleMerchant, "shop@example.com", true, domain.StatusActive)

	_, err := f.svc.RequestCode(ctx, "shop@example.com", domain.PurposeWithdrawal)
	require.NoError(t, err)
	n, _ := f.notifier.Last()

	require.NoError(t, f.svc.RedeemCode(ctx, "shop@example.com", n.Code, domain.PurposeWithdrawal))
	assert.ErrorIs(t,
		f.svc.RedeemCode(ctx, "shop@example.com", n.Code, domain.PurposeWithdrawal),
		verification.ErrInvalidOrExpiredCode)
}
