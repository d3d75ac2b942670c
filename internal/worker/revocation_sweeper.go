package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper evicts revocations whose tokens have expired.
type Sweeper interface {
	SweepRevocations(now time.Time) int
}

// StartRevocationSweeper periodically evicts expired revocations until ctx is done.
// A non-positive interval leaves the registry unbounded and starts nothing.
// The returned channel is closed once the loop has exited.
func StartRevocationSweeper(ctx context.Context, sweeper Sweeper, interval time.Duration, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	if sweeper == nil || interval <= 0 {
		close(done)
		return done
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if evicted := sweeper.SweepRevocations(now); evicted > 0 {
					logger.Debug("evicted expired revocations", zap.Int("count", evicted))
				}
			}
		}
	}()
	return done
}
