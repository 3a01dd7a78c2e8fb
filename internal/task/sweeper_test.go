package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/cardhub-api/internal/domain"
	"github.com/phrazzld/cardhub-api/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingObserver struct {
	mu    sync.Mutex
	total int64
	calls int
}

func (o *countingObserver) ObserveCodesPurged(n int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.total += n
	o.calls++
}

func TestCodeSweeper_Sweep(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	codes := mocks.NewMockCodeStore()
	ctx := context.Background()
	for i, expiresAt := range []time.Time{now.Add(-time.Hour), now, now.Add(time.Minute)} {
		require.NoError(t, codes.Create(ctx, &domain.VerificationCode{
			UserID: int64(i + 1), Purpose: domain.PurposeRegistration, Code: "123456", ExpiresAt: expiresAt,
		}))
	}

	obs := &countingObserver{}
	s := NewCodeSweeper(codes, time.Hour, obs, nil)
	s.timeFunc = func() time.Time { return now }

	n, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n, "a code expiring exactly now is purged")
	assert.Len(t, codes.All(), 1)
	assert.Equal(t, int64(2), obs.total)

	n, err = s.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

type failingPurger struct{ calls chan struct{} }

func (p failingPurger) PurgeExpired(context.Context, time.Time) (int64, error) {
	select {
	case p.calls <- struct{}{}:
	default:
	}
	return 0, errors.New("connection reset")
}

func TestCodeSweeper_StartStop(t *testing.T) {
	t.Parallel()

	p := failingPurger{calls: make(chan struct{}, 10)}
	s := NewCodeSweeper(p, 10*time.Millisecond, nil, nil)
	s.Start(context.Background())

	// Failures are logged and the loop keeps going.
	for i := 0; i < 2; i++ {
		select {
		case <-p.calls:
		case <-time.After(2 * time.Second):
			t.Fatal("sweeper did not run")
		}
	}

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestNewCodeSweeper_DefaultInterval(t *testing.T) {
	t.Parallel()
	assert.Equal(t, DefaultSweepInterval, NewCodeSweeper(mocks.NewMockCodeStore(), 0, nil, nil).interval)
}
