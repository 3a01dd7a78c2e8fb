package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/phrazzld/cardhub-api/internal/api"
	apimw "github.com/phrazzld/cardhub-api/internal/api/middleware"
	"github.com/phrazzld/cardhub-api/internal/config"
	"github.com/phrazzld/cardhub-api/internal/platform/mail"
	"github.com/phrazzld/cardhub-api/internal/platform/metrics"
	"github.com/phrazzld/cardhub-api/internal/platform/postgres"
	"github.com/phrazzld/cardhub-api/internal/platform/redis"
	"github.com/phrazzld/cardhub-api/internal/platform/s3"
	"github.com/phrazzld/cardhub-api/internal/service"
	"github.com/phrazzld/cardhub-api/internal/service/auth"
	"github.com/phrazzld/cardhub-api/internal/service/verification"
	"github.com/phrazzld/cardhub-api/internal/store"
	"github.com/phrazzld/cardhub-api/internal/task"
)

// application holds the wired dependencies and owns their shutdown.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	db      *sql.DB
	metrics *metrics.Recorder

	users    store.UserStore
	jwt      auth.JWTService
	accounts api.AccountService

	// optional, nil when not configured
	avatars api.AvatarService
	limiter apimw.Limiter
	redis   *goredis.Client

	sweeper *task.CodeSweeper
}

// newApplication wires stores, services and optional backends. The admin
// account is seeded here so a fresh database is usable immediately.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		db:      db,
		metrics: metrics.NewRecorder(),
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	app.jwt = jwtService

	app.users = postgres.NewPostgresUserStore(db, cfg.Auth.BcryptCost, logger)
	codes := postgres.NewPostgresCodeStore(db, logger)

	coordinator := verification.NewCoordinator(app.users, codes, mail.New(cfg.Mail, logger), logger,
		verification.WithMetrics(app.metrics))
	accounts := service.NewAccountService(db, app.users, coordinator, jwtService,
		auth.NewBcryptVerifier(cfg.Auth.BcryptCost), cfg.Auth, logger)
	app.accounts = accounts

	if cfg.Auth.AdminEmail != "" {
		if _, err := accounts.SeedAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
			return nil, fmt.Errorf("failed to seed admin account: %w", err)
		}
	}

	if cfg.Storage.AvatarsEnabled() {
		objects, err := s3.NewObjectStore(ctx, cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize object storage: %w", err)
		}
		app.avatars = service.NewAvatarService(postgres.NewPostgresAvatarStore(db, logger), objects, logger)
		logger.Info("avatar storage enabled", slog.String("bucket", cfg.Storage.Bucket))
	}

	if cfg.Redis.RateLimitEnabled() {
		client, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.redis = client
		app.limiter = redis.NewFixedWindowLimiter(client, cfg.Redis.RateLimitRequests,
			time.Duration(cfg.Redis.RateLimitWindowMinutes)*time.Minute)
		logger.Info("rate limiting enabled",
			slog.Int("requests", cfg.Redis.RateLimitRequests),
			slog.Int("window_minutes", cfg.Redis.RateLimitWindowMinutes))
	}

	app.sweeper = task.NewCodeSweeper(codes,
		time.Duration(cfg.Verification.SweepIntervalMinutes)*time.Minute, app.metrics, logger)

	logger.Info("application initialized")
	return app, nil
}

// Run starts background work and serves HTTP until ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	app.sweeper.Start(ctx)

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup stops background work and closes connections.
func (app *application) cleanup() {
	if app.sweeper != nil {
		app.sweeper.Stop()
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", slog.String("error", err.Error()))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}
	app.logger.Info("application shutdown completed")
}
