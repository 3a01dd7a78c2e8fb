package mocks

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"sync"

	"github.com/phrazzld/cardhub-api/internal/domain"
	objstore "github.com/phrazzld/cardhub-api/internal/platform/s3"
	"github.com/phrazzld/cardhub-api/internal/store"
)

type avatarKey struct {
	ownerType domain.Role
	ownerID   int64
}

// MockAvatarStore implements store.AvatarStore in memory.
type MockAvatarStore struct {
	UpsertFn func(ctx context.Context, avatar *domain.Avatar) error

	mu      sync.Mutex
	avatars map[avatarKey]domain.Avatar
	nextID  int64
}

// NewMockAvatarStore creates an empty avatar store.
func NewMockAvatarStore() *MockAvatarStore {
	return &MockAvatarStore{avatars: make(map[avatarKey]domain.Avatar)}
}

// Get implements store.AvatarStore.
func (m *MockAvatarStore) Get(_ context.Context, ownerType domain.Role, ownerID int64) (*domain.Avatar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.avatars[avatarKey{ownerType, ownerID}]
	if !ok {
		return nil, store.ErrAvatarNotFound
	}
	return &a, nil
}

// Upsert implements store.AvatarStore.
func (m *MockAvatarStore) Upsert(ctx context.Context, avatar *domain.Avatar) error {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, avatar)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := avatarKey{avatar.OwnerType, avatar.OwnerID}
	if prev, ok := m.avatars[k]; ok {
		avatar.ID = prev.ID
		avatar.CreatedAt = prev.CreatedAt
	} else {
		m.nextID++
		avatar.ID = m.nextID
	}
	m.avatars[k] = *avatar
	return nil
}

// Delete implements store.AvatarStore.
func (m *MockAvatarStore) Delete(_ context.Context, ownerType domain.Role, ownerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := avatarKey{ownerType, ownerID}
	if _, ok := m.avatars[k]; !ok {
		return store.ErrAvatarNotFound
	}
	delete(m.avatars, k)
	return nil
}

// WithTx implements store.AvatarStore. The mock ignores the transaction.
func (m *MockAvatarStore) WithTx(*sql.Tx) store.AvatarStore {
	return m
}

// MockObjectStore is an in-memory object store.
type MockObjectStore struct {
	PutErr error

	mu      sync.Mutex
	objects map[string]objstore.Object
	data    map[string][]byte
}

// NewMockObjectStore creates an empty object store.
func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{objects: map[string]objstore.Object{}, data: map[string][]byte{}}
}

// Put stores body under key.
func (m *MockObjectStore) Put(_ context.Context, key, contentType string, body io.Reader, size int64) error {
	if m.PutErr != nil {
		return m.PutErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if int64(len(b)) != size {
		return fmt.Errorf("size mismatch: declared %d, read %d", size, len(b))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = objstore.Object{ContentType: contentType, Size: size}
	m.data[key] = b
	return nil
}

// Get returns the object at key.
func (m *MockObjectStore) Get(_ context.Context, key string) (*objstore.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, objstore.ErrObjectNotFound
	}
	obj.Body = io.NopCloser(bytes.NewReader(m.data[key]))
	return &obj, nil
}

// Delete removes key.
func (m *MockObjectStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	delete(m.data, key)
	return nil
}

// Keys returns the stored keys.
func (m *MockObjectStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}
