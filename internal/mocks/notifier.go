package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/cardhub-api/internal/service/verification"
)

// MockNotifier implements verification.Notifier and records every message.
type MockNotifier struct {
	SendFn func(ctx context.Context, n verification.Notification) error
	Err    error

	mu   sync.Mutex
	sent []verification.Notification
}

// Send implements verification.Notifier. The notification is recorded even
// when an error is returned.
func (m *MockNotifier) Send(ctx context.Context, n verification.Notification) error {
	m.mu.Lock()
	m.sent = append(m.sent, n)
	m.mu.Unlock()

	if m.SendFn != nil {
		return m.SendFn(ctx, n)
	}
	return m.Err
}

// Sent returns the recorded notifications.
func (m *MockNotifier) Sent() []verification.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]verification.Notification(nil), m.sent...)
}

// Last returns the most recent notification, or false if none was sent.
func (m *MockNotifier) Last() (verification.Notification, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return verification.Notification{}, false
	}
	return m.sent[len(m.sent)-1], true
}
