package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/campify/campify-api/internal/metrics"
	"go.uber.org/zap"
)

const sweepTimeout = 2 * time.Minute

// DeadLetterSweeper drops retag jobs that have sat in the dead-letter queue
// longer than the retention period. A route whose retag was dead-lettered
// keeps its stored tags, so the dead job only matters while an operator
// might still inspect it.
type DeadLetterSweeper struct {
	purger    DLQPurger
	every     time.Duration
	retention time.Duration
	logger    *zap.Logger
}

// NewDeadLetterSweeper sweeps purger every interval. A nil purger makes the
// sweeper a no-op.
func NewDeadLetterSweeper(purger DLQPurger, every, retention time.Duration, logger *zap.Logger) *DeadLetterSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeadLetterSweeper{purger: purger, every: every, retention: retention, logger: logger}
}

// Run sweeps once immediately, then on every tick, until ctx is done.
// It returns ctx.Err().
func (s *DeadLetterSweeper) Run(ctx context.Context) error {
	s.sweepAndLog(ctx)

	ticker := time.NewTicker(s.every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweepAndLog(ctx)
		}
	}
}

func (s *DeadLetterSweeper) sweepAndLog(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.Sweep(ctx); err != nil {
		s.logger.Warn("dead_retag_jobs_sweep_failed", zap.Error(err))
	}
}

// Sweep purges expired dead retag jobs once and returns how many were removed.
func (s *DeadLetterSweeper) Sweep(ctx context.Context) (int, error) {
	if s.purger == nil {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	purged, err := s.purger.PurgeOlderThan(ctx, s.retention)
	if purged > 0 {
		metrics.DeadJobsPurgedTotal.Add(float64(purged))
		s.logger.Info("dead_retag_jobs_purged",
			zap.Int("count", purged),
			zap.Duration("retention", s.retention),
		)
	}
	if err != nil {
		return purged, fmt.Errorf("failed to purge dead retag jobs: %w", err)
	}
	return purged, nil
}
