package mocks

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/phrazzld/cardhub-api/internal/domain"
	"github.com/phrazzld/cardhub-api/internal/store"
)

// MockCodeStore implements store.CodeStore in memory. Invalidate removes by
// ID under a mutex, so exactly one concurrent caller succeeds, matching the
// rows-affected check of the SQL store.
type MockCodeStore struct {
	FindLiveFn     func(ctx context.Context, userID int64, purpose domain.Purpose, now time.Time) (*domain.VerificationCode, error)
	CreateFn       func(ctx context.Context, code *domain.VerificationCode) error
	FindMatchingFn func(ctx context.Context, userID int64, code string, purpose domain.Purpose, now time.Time) (*domain.VerificationCode, error)
	InvalidateFn   func(ctx context.Context, code *domain.VerificationCode) error

	mu     sync.Mutex
	codes  map[int64]domain.VerificationCode
	nextID int64
}

// NewMockCodeStore creates an empty in-memory code store.
func NewMockCodeStore() *MockCodeStore {
	return &MockCodeStore{codes: make(map[int64]domain.VerificationCode)}
}

// All returns a snapshot of every stored code.
func (m *MockCodeStore) All() []domain.VerificationCode {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.VerificationCode, 0, len(m.codes))
	for _, c := range m.codes {
		out = append(out, c)
	}
	return out
}

// FindLive implements store.CodeStore.
func (m *MockCodeStore) FindLive(
	ctx context.Context,
	userID int64,
	purpose domain.Purpose,
	now time.Time,
) (*domain.VerificationCode, error) {
	if m.FindLiveFn != nil {
		return m.FindLiveFn(ctx, userID, purpose, now)
	}
	return m.latest(func(c domain.VerificationCode) bool {
		return c.UserID == userID && c.Purpose == purpose && c.ExpiresAt.After(now)
	})
}

// Create implements store.CodeStore.
func (m *MockCodeStore) Create(ctx context.Context, code *domain.VerificationCode) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, code)
	}
	if err := code.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.codes == nil {
		m.codes = make(map[int64]domain.VerificationCode)
	}
	m.nextID++
	code.ID = m.nextID
	m.codes[code.ID] = *code
	return nil
}

// FindMatching implements store.CodeStore.
func (m *MockCodeStore) FindMatching(
	ctx context.Context,
	userID int64,
	code string,
	purpose domain.Purpose,
	now time.Time,
) (*domain.VerificationCode, error) {
	if m.FindMatchingFn != nil {
		return m.FindMatchingFn(ctx, userID, code, purpose, now)
	}
	return m.latest(func(c domain.VerificationCode) bool {
		return c.UserID == userID && c.Code == code && c.Purpose == purpose && c.ExpiresAt.After(now)
	})
}

// Invalidate implements store.CodeStore.
func (m *MockCodeStore) Invalidate(ctx context.Context, code *domain.VerificationCode) error {
	if m.InvalidateFn != nil {
		return m.InvalidateFn(ctx, code)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.codes[code.ID]; !ok {
		return store.ErrCodeNotFound
	}
	delete(m.codes, code.ID)
	return nil
}

// PurgeExpired implements store.CodeStore.
func (m *MockCodeStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, c := range m.codes {
		if !c.ExpiresAt.After(now) {
			delete(m.codes, id)
			n++
		}
	}
	return n, nil
}

// WithTx implements store.CodeStore. The mock ignores the transaction.
func (m *MockCodeStore) WithTx(tx *sql.Tx) store.CodeStore {
	return m
}

func (m *MockCodeStore) latest(match func(domain.VerificationCode) bool) (*domain.VerificationCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best *domain.VerificationCode
	for _, c := range m.codes {
		if !match(c) {
			continue
		}
		if best == nil || c.ExpiresAt.After(best.ExpiresAt) {
			cp := c
			best = &cp
		}
	}
	if best == nil {
		return nil, store.ErrCodeNotFound
	}
	return best, nil
}
