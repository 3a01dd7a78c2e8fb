package verification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/cardhub-api/internal/domain"
	"github.com/phrazzld/cardhub-api/internal/platform/logger"
	"github.com/phrazzld/cardhub-api/internal/store"
)

// Coordinator issues and redeems one-time codes. For each (principal,
// purpose) a code moves from issued to either redeemed or expired; there is
// no other transition.
type Coordinator struct {
	users     store.UserStore
	codes     store.CodeStore
	notifier  Notifier
	generator CodeGenerator
	metrics   Metrics
	timeFunc  func() time.Time
	logger    *slog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock replaces time.Now.
func WithClock(f func() time.Time) Option {
	return func(c *Coordinator) { c.timeFunc = f }
}

// WithGenerator replaces the crypto/rand code generator.
func WithGenerator(g CodeGenerator) Option {
	return func(c *Coordinator) { c.generator = g }
}

// WithMetrics reports outcomes to m.
func WithMetrics(m Metrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(
	users store.UserStore,
	codes store.CodeStore,
	notifier Notifier,
	logger *slog.Logger,
	opts ...Option,
) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Coordinator{
		users:     users,
		codes:     codes,
		notifier:  notifier,
		generator: NewRandomCodeGenerator(),
		metrics:   nopMetrics{},
		timeFunc:  time.Now,
		logger:    logger.With(slog.String("component", "verification")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTx returns a copy of the coordinator whose stores run inside tx, so a
// redemption and the mutation it authorizes commit or roll back together.
func (c *Coordinator) WithTx(tx *sql.Tx) *Coordinator {
	cp := *c
	cp.users = c.users.WithTx(tx)
	cp.codes = c.codes.WithTx(tx)
	return &cp
}

// RequestCode issues a code for the principal registered under email and
// dispatches it. Only the expiry is returned; the code value leaves the
// process solely through the notifier.
//
// If delivery fails the code stays stored and ErrDelivery is returned;
// a retry before expiry gets ErrCodeAlreadyIssued.
func (c *Coordinator) RequestCode(ctx context.Context, email string, purpose domain.Purpose) (time.Time, error) {
	log := logger.FromContextOrDefault(ctx, c.logger).With(slog.String("purpose", string(purpose)))

	if !purpose.Valid() {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPurpose, purpose)
	}

	user, err := c.lookup(ctx, email)
	if err != nil {
		c.metrics.ObserveCodeRequest(purpose, outcomeFor(err))
		return time.Time{}, err
	}

	now := c.timeFunc().UTC()

	// Check-then-create is not atomic; concurrent requests may both issue.
	_, err = c.codes.FindLive(ctx, user.ID, purpose, now)
	switch {
	case err == nil:
		log.Debug("live code already exists", slog.Int64("user_id", user.ID))
		c.metrics.ObserveCodeRequest(purpose, OutcomeAlreadyIssued)
		return time.Time{}, ErrCodeAlreadyIssued
	case !errors.Is(err, store.ErrCodeNotFound):
		c.metrics.ObserveCodeRequest(purpose, OutcomeError)
		return time.Time{}, fmt.Errorf("failed to check for live code: %w", err)
	}

	value, err := c.generator.Generate()
	if err != nil {
		c.metrics.ObserveCodeRequest(purpose, OutcomeError)
		return time.Time{}, fmt.Errorf("failed to generate code: %w", err)
	}

	code, err := domain.NewVerificationCode(user.ID, purpose, value, now)
	if err != nil {
		c.metrics.ObserveCodeRequest(purpose, OutcomeError)
		return time.Time{}, fmt.Errorf("failed to build code: %w", err)
	}

	if err := c.codes.Create(ctx, code); err != nil {
		c.metrics.ObserveCodeRequest(purpose, OutcomeError)
		return time.Time{}, fmt.Errorf("failed to store code: %w", err)
	}

	err = c.notifier.Send(ctx, Notification{
		To:        user.Email,
		Username:  user.Username,
		Purpose:   purpose,
		Code:      code.Code,
		ExpiresAt: code.ExpiresAt,
	})
	if err != nil {
		log.Error("failed to deliver verification code",
			slog.String("error", err.Error()),
			slog.Int64("user_id", user.ID),
			slog.Int64("code_id", code.ID))
		c.metrics.ObserveCodeRequest(purpose, OutcomeDeliveryError)
		return time.Time{}, fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	log.Info("verification code issued",
		slog.Int64("user_id", user.ID),
		slog.Int64("code_id", code.ID),
		slog.Time("expires_at", code.ExpiresAt))
	c.metrics.ObserveCodeRequest(purpose, OutcomeIssued)
	return code.ExpiresAt, nil
}

// Redeem consumes a live code. It succeeds at most once per issued code,
// including when several requests present the same code concurrently.
func (c *Coordinator) Redeem(ctx context.Context, email, code string, purpose domain.Purpose) error {
	_, err := c.RedeemForPrincipal(ctx, email, code, purpose)
	return err
}

// RedeemForPrincipal is Redeem that also returns the principal the code
// belonged to, for callers that act on the account afterwards.
func (c *Coordinator) RedeemForPrincipal(
	ctx context.Context,
	email, code string,
	purpose domain.Purpose,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, c.logger).With(slog.String("purpose", string(purpose)))

	if !purpose.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPurpose, purpose)
	}

	user, err := c.lookup(ctx, email)
	if err != nil {
		c.metrics.ObserveCodeRedeem(purpose, outcomeFor(err))
		return nil, err
	}

	if !domain.IsWellFormedCode(code) {
		c.metrics.ObserveCodeRedeem(purpose, OutcomeInvalid)
		return nil, ErrInvalidOrExpiredCode
	}

	now := c.timeFunc().UTC()

	record, err := c.codes.FindMatching(ctx, user.ID, code, purpose, now)
	if err != nil {
		if errors.Is(err, store.ErrCodeNotFound) {
			log.Debug("no matching live code", slog.Int64("user_id", user.ID))
			c.metrics.ObserveCodeRedeem(purpose, OutcomeInvalid)
			return nil, ErrInvalidOrExpiredCode
		}
		c.metrics.ObserveCodeRedeem(purpose, OutcomeError)
		return nil, fmt.Errorf("failed to look up code: %w", err)
	}

	if err := c.codes.Invalidate(ctx, record); err != nil {
		if errors.Is(err, store.ErrCodeNotFound) {
			log.Info("verification code redeemed concurrently",
				slog.Int64("user_id", user.ID),
				slog.Int64("code_id", record.ID))
			c.metrics.ObserveCodeRedeem(purpose, OutcomeInvalid)
			return nil, ErrInvalidOrExpiredCode
		}
		c.metrics.ObserveCodeRedeem(purpose, OutcomeError)
		return nil, fmt.Errorf("failed to invalidate code: %w", err)
	}

	log.Info("verification code redeemed",
		slog.Int64("user_id", user.ID),
		slog.Int64("code_id", record.ID))
	c.metrics.ObserveCodeRedeem(purpose, OutcomeRedeemed)
	return user, nil
}

func (c *Coordinator) lookup(ctx context.Context, email string) (*domain.User, error) {
	user, err := c.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("failed to look up principal: %w", err)
	}
	return user, nil
}

func outcomeFor(err error) string {
	if errors.Is(err, ErrPrincipalNotFound) {
		return OutcomeNotFound
	}
	return OutcomeError
}
