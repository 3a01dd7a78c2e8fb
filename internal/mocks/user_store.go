package mocks

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/phrazzld/cardhub-api/internal/domain"
	"github.com/phrazzld/cardhub-api/internal/store"
)

// MockUserStore implements store.UserStore for testing. Without function
// fields set it behaves as an in-memory store keyed by email. Passwords are
// kept as "hashed:<plaintext>" so tests can pair it with MockPasswordVerifier.
type MockUserStore struct {
	CreateFn            func(ctx context.Context, user *domain.User) error
	GetByIDFn           func(ctx context.Context, id int64) (*domain.User, error)
	GetByEmailFn        func(ctx context.Context, email string) (*domain.User, error)
	UpdatePasswordFn    func(ctx context.Context, id int64, password string) error
	MarkEmailVerifiedFn func(ctx context.Context, id int64) error

	mu     sync.Mutex
	users  map[string]*domain.User
	nextID int64
}

// NewMockUserStore creates an empty in-memory user store.
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{users: make(map[string]*domain.User)}
}

// HashedPrefix marks passwords stored by MockUserStore.
const HashedPrefix = "hashed:"

// Add stores a copy of user as-is, assigning an ID if it has none, and
// returns the ID.
func (m *MockUserStore) Add(user *domain.User) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.users == nil {
		m.users = make(map[string]*domain.User)
	}
	u := *user
	if u.ID == 0 {
		m.nextID++
		u.ID = m.nextID
	} else if u.ID > m.nextID {
		m.nextID = u.ID
	}
	if u.Status == "" {
		u.Status = domain.StatusActive
	}
	m.users[u.Email] = &u
	return u.ID
}

// Create implements store.UserStore.
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	if err := user.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	_, exists := m.users[user.Email]
	m.mu.Unlock()
	if exists {
		return store.ErrEmailExists
	}
	user.HashedPassword = HashedPrefix + user.Password
	user.Password = ""
	user.ID = m.Add(user)
	return nil
}

// GetByID implements store.UserStore.
func (m *MockUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// GetByEmail implements store.UserStore.
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[domain.NormalizeEmail(email)]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// UpdatePassword implements store.UserStore.
func (m *MockUserStore) UpdatePassword(ctx context.Context, id int64, password string) error {
	if m.UpdatePasswordFn != nil {
		return m.UpdatePasswordFn(ctx, id, password)
	}
	if err := domain.ValidatePassword(password); err != nil {
		return err
	}
	return m.mutate(id, func(u *domain.User) { u.HashedPassword = HashedPrefix + password })
}

// MarkEmailVerified implements store.UserStore.
func (m *MockUserStore) MarkEmailVerified(ctx context.Context, id int64) error {
	if m.MarkEmailVerifiedFn != nil {
		return m.MarkEmailVerifiedFn(ctx, id)
	}
	return m.mutate(id, func(u *domain.User) { u.EmailVerified = true })
}

// WithTx implements store.UserStore. The mock ignores the transaction.
func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}

func (m *MockUserStore) mutate(id int64, f func(*domain.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			f(u)
			u.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return store.ErrUserNotFound
}
