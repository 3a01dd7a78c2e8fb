package api

import (
	"context"
	"io"
	"time"

	"github.com/phrazzld/cardhub-api/internal/domain"
	"github.com/phrazzld/cardhub-api/internal/service"
)

// AccountService is the account behaviour the handlers depend on.
// *service.AccountService satisfies it.
type AccountService interface {
	Register(ctx context.Context, in service.NewAccount) (*domain.User, error)
	CreateMerchant(ctx context.Context, in service.NewAccount) (*domain.User, error)
	Login(ctx context.Context, role domain.Role, email, password string) (*service.Session, error)
	RequestCode(ctx context.Context, email string, purpose domain.Purpose) (time.Time, error)
	RedeemCode(ctx context.Context, email, code string, purpose domain.Purpose) error
	VerifyEmail(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

// AvatarService is the avatar behaviour the handlers depend on.
// *service.AvatarService satisfies it.
type AvatarService interface {
	Upload(ctx context.Context, ownerType domain.Role, ownerID int64, filename string, size int64, body io.Reader) (*domain.Avatar, error)
	Get(ctx context.Context, ownerType domain.Role, ownerID int64) (*domain.Avatar, error)
	Open(ctx context.Context, ownerType domain.Role, ownerID int64) (*domain.Avatar, io.ReadCloser, error)
	Delete(ctx context.Context, ownerType domain.Role, ownerID int64) error
}

var (
	_ AccountService = (*service.AccountService)(nil)
	_ AvatarService  = (*service.AvatarService)(nil)
)
