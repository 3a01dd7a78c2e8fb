package task

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultSweepInterval matches an hourly cron schedule.
const DefaultSweepInterval = time.Hour

// ExpiredCodePurger deletes verification codes whose window has closed.
// store.CodeStore satisfies it.
type ExpiredCodePurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// PurgeObserver receives the number of codes removed by each sweep.
type PurgeObserver interface {
	ObserveCodesPurged(n int64)
}

// CodeSweeper periodically removes expired verification codes. Expired
// codes are already unusable; sweeping only keeps the table small.
type CodeSweeper struct {
	codes    ExpiredCodePurger
	interval time.Duration
	observer PurgeObserver
	timeFunc func() time.Time
	logger   *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCodeSweeper creates a sweeper. A non-positive interval falls back to
// DefaultSweepInterval; observer may be nil.
func NewCodeSweeper(codes ExpiredCodePurger, interval time.Duration, observer PurgeObserver, logger *slog.Logger) *CodeSweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CodeSweeper{
		codes:    codes,
		interval: interval,
		observer: observer,
		timeFunc: time.Now,
		logger:   logger.With(slog.String("component", "code_sweeper")),
	}
}

// Sweep runs one purge and returns the number of removed codes.
func (s *CodeSweeper) Sweep(ctx context.Context) (int64, error) {
	n, err := s.codes.PurgeExpired(ctx, s.timeFunc().UTC())
	if err != nil {
		return 0, err
	}
	if s.observer != nil {
		s.observer.ObserveCodesPurged(n)
	}
	if n > 0 {
		s.logger.Info("expired verification codes purged", slog.Int64("count", n))
	}
	return n, nil
}

// Start sweeps once immediately and then on every tick until Stop is called
// or ctx is cancelled.
func (s *CodeSweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("failed to purge expired verification codes",
					slog.String("error", err.Error()))
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	s.logger.Info("code sweeper started", slog.Duration("interval", s.interval))
}

// Stop cancels the sweep loop and waits for an in-flight sweep to finish.
func (s *CodeSweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}
