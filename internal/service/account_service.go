package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/cardhub-api/internal/config"
	"github.com/phrazzld/cardhub-api/internal/domain"
	"github.com/phrazzld/cardhub-api/internal/platform/logger"
	"github.com/phrazzld/cardhub-api/internal/service/auth"
	"github.com/phrazzld/cardhub-api/internal/service/verification"
	"github.com/phrazzld/cardhub-api/internal/store"
)

// NewAccount carries the fields of a registration or merchant creation.
type NewAccount struct {
	Username    string
	Email       string
	PhoneNumber string
	Password    string
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Principal *domain.User
}

// AccountService implements registration, per-role login and the
// code-backed flows that mutate an account.
type AccountService struct {
	db        store.TxBeginner
	users     store.UserStore
	codes     *verification.Coordinator
	jwt       auth.JWTService
	passwords auth.PasswordVerifier
	ttls      map[domain.Role]time.Duration
	logger    *slog.Logger
}

// NewAccountService creates an AccountService. Session lifetimes are taken
// per role from cfg.
func NewAccountService(
	db store.TxBeginner,
	users store.UserStore,
	codes *verification.Coordinator,
	jwt auth.JWTService,
	passwords auth.PasswordVerifier,
	cfg config.AuthConfig,
	logger *slog.Logger,
) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		db:        db,
		users:     users,
		codes:     codes,
		jwt:       jwt,
		passwords: passwords,
		ttls: map[domain.Role]time.Duration{
			domain.RoleUser:     time.Duration(cfg.UserTokenLifetimeMinutes) * time.Minute,
			domain.RoleMerchant: time.Duration(cfg.MerchantTokenLifetimeMinutes) * time.Minute,
			domain.RoleAdmin:    time.Duration(cfg.AdminTokenLifetimeMinutes) * time.Minute,
		},
		logger: logger.With(slog.String("component", "account_service")),
	}
}

// Register creates an unverified customer account.
func (s *AccountService) Register(ctx context.Context, in NewAccount) (*domain.User, error) {
	return s.create(ctx, in, domain.RoleUser, false)
}

// CreateMerchant creates a merchant account on behalf of an admin. The email
// is trusted and marked verified.
func (s *AccountService) CreateMerchant(ctx context.Context, in NewAccount) (*domain.User, error) {
	return s.create(ctx, in, domain.RoleMerchant, true)
}

// SeedAdmin ensures an admin account exists for email. An existing account
// under that email is left untouched, whatever its role.
func (s *AccountService) SeedAdmin(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role != domain.RoleAdmin {
			log.Warn("admin seed email belongs to a non-admin account",
				slog.Int64("user_id", existing.ID),
				slog.String("role", string(existing.Role)))
		}
		return existing, nil
	case !errors.Is(err, store.ErrUserNotFound):
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}

	admin, err := s.create(ctx, NewAccount{Username: "admin", Email: email, Password: password}, domain.RoleAdmin, true)
	if err != nil {
		return nil, err
	}
	log.Info("admin account seeded", slog.Int64("user_id", admin.ID))
	return admin, nil
}

func (s *AccountService) create(ctx context.Context, in NewAccount, role domain.Role, verified bool) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(in.Username, in.Email, in.PhoneNumber, in.Password, role)
	if err != nil {
		return nil, err
	}
	user.EmailVerified = verified

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("email already registered", slog.String("role", string(role)))
			return nil, err
		}
		log.Error("failed to create account", slog.String("error", err.Error()), slog.String("role", string(role)))
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	log.Info("account created", slog.Int64("user_id", user.ID), slog.String("role", string(role)))
	return user, nil
}

// Login authenticates a principal of the given role and issues a credential
// with that role's lifetime. Users must have verified their email first.
func (s *AccountService) Login(ctx context.Context, role domain.Role, email, password string) (*Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("role", string(role)))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			_ = s.passwords.CompareMissing(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if err := s.passwords.Compare(user.HashedPassword, password); err != nil {
		log.Debug("password mismatch", slog.Int64("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}
	if user.Role != role {
		log.Debug("login with wrong role", slog.Int64("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, ErrAccountInactive
	}
	if role == domain.RoleUser && !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	token, expiresAt, err := s.jwt.GenerateToken(ctx, user.ID, user.Role, s.ttls[role])
	if err != nil {
		log.Error("failed to issue token", slog.String("error", err.Error()), slog.Int64("user_id", user.ID))
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	log.Info("login succeeded", slog.Int64("user_id", user.ID))
	return &Session{Token: token, ExpiresAt: expiresAt, Principal: user}, nil
}

// RequestCode issues a code for purpose to the account registered under
// email. Only the expiry is returned.
func (s *AccountService) RequestCode(ctx context.Context, email string, purpose domain.Purpose) (time.Time, error) {
	return s.codes.RequestCode(ctx, email, purpose)
}

// RedeemCode consumes a code without any follow-up mutation. Withdrawal
// approval uses this.
func (s *AccountService) RedeemCode(ctx context.Context, email, code string, purpose domain.Purpose) error {
	return s.codes.Redeem(ctx, email, code, purpose)
}

// VerifyEmail redeems a registration code and marks the email verified. Both
// happen in one transaction so a failed update leaves the code redeemable.
func (s *AccountService) VerifyEmail(ctx context.Context, email, code string) error {
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		user, err := s.codes.WithTx(tx).RedeemForPrincipal(ctx, email, code, domain.PurposeRegistration)
		if err != nil {
			return err
		}
		if err := s.users.WithTx(tx).MarkEmailVerified(ctx, user.ID); err != nil {
			return fmt.Errorf("failed to mark email verified: %w", err)
		}
		return nil
	})
}

// ResetPassword redeems a password-reset code and stores newPassword. The
// password is validated before the code is consumed.
func (s *AccountService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if err := domain.ValidatePassword(newPassword); err != nil {
		return err
	}

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		user, err := s.codes.WithTx(tx).RedeemForPrincipal(ctx, email, code, domain.PurposePasswordReset)
		if err != nil {
			return err
		}
		if err := s.users.WithTx(tx).UpdatePassword(ctx, user.ID, newPassword); err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		logger.FromContextOrDefault(ctx, s.logger).Info("password reset", slog.Int64("user_id", user.ID))
		return nil
	})
}
