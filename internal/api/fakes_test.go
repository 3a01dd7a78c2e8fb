package api_test

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/phrazzld/cardhub-api/internal/domain"
	"github.com/phrazzld/cardhub-api/internal/service"
)

// fakeAccounts records the last call and returns the configured result.
type fakeAccounts struct {
	user      *domain.User
	session   *service.Session
	expiresAt time.Time
	err       error

	gotRole    domain.Role
	gotEmail   string
	gotCode    string
	gotPurpose domain.Purpose
	gotAccount service.NewAccount
	gotNewPass string
}

func (f *fakeAccounts) Register(_ context.Context, in service.NewAccount) (*domain.User, error) {
	f.gotAccount = in
	return f.user, f.err
}

func (f *fakeAccounts) CreateMerchant(_ context.Context, in service.NewAccount) (*domain.User, error) {
	f.gotAccount = in
	return f.user, f.err
}

func (f *fakeAccounts) Login(_ context.Context, role domain.Role, email, _ string) (*service.Session, error) {
	f.gotRole, f.gotEmail = role, email
	return f.session, f.err
}

func (f *fakeAccounts) RequestCode(_ context.Context, email string, purpose domain.Purpose) (time.Time, error) {
	f.gotEmail, f.gotPurpose = email, purpose
	return f.expiresAt, f.err
}

func (f *fakeAccounts) RedeemCode(_ context.Context, email, code string, purpose domain.Purpose) error {
	f.gotEmail, f.gotCode, f.gotPurpose = email, code, purpose
	return f.err
}

func (f *fakeAccounts) VerifyEmail(_ context.Context, email, code string) error {
	f.gotEmail, f.gotCode, f.gotPurpose = email, code, domain.PurposeRegistration
	return f.err
}

func (f *fakeAccounts) ResetPassword(_ context.Context, email, code, newPassword string) error {
	f.gotEmail, f.gotCode, f.gotNewPass = email, code, newPassword
	return f.err
}

type fakeAvatars struct {
	avatar *domain.Avatar
	body   string
	err    error

	gotType     domain.Role
	gotID       int64
	gotFilename string
	gotBody     []byte
}

func (f *fakeAvatars) Upload(_ context.Context, t domain.Role, id int64, filename string, _ int64, body io.Reader) (*domain.Avatar, error) {
	f.gotType, f.gotID, f.gotFilename = t, id, filename
	f.gotBody, _ = io.ReadAll(body)
	return f.avatar, f.err
}

func (f *fakeAvatars) Get(_ context.Context, t domain.Role, id int64) (*domain.Avatar, error) {
	f.gotType, f.gotID = t, id
	return f.avatar, f.err
}

func (f *fakeAvatars) Open(_ context.Context, t domain.Role, id int64) (*domain.Avatar, io.ReadCloser, error) {
	f.gotType, f.gotID = t, id
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.avatar, io.NopCloser(strings.NewReader(f.body)), nil
}

func (f *fakeAvatars) Delete(_ context.Context, t domain.Role, id int64) error {
	f.gotType, f.gotID = t, id
	return f.err
}
