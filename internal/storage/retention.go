// internal/storage/retention.go
package storage

import (
	"context"
	"time"

	"screener/internal/common/logger"
)

// Purger removes archive rows older than the retention horizon.
type Purger interface {
	PurgeOlderThan(ctx context.Context, retention time.Duration) (int64, error)
}

// RetentionSweeper runs periodic purges against an archive. One sweep
// happens immediately on Run so a long-stopped service catches up.
type RetentionSweeper struct {
	purger    Purger
	retention time.Duration
	interval  time.Duration
	logger    logger.Logger
}

func NewRetentionSweeper(purger Purger, retention, interval time.Duration, log logger.Logger) *RetentionSweeper {
	return &RetentionSweeper{
		purger:    purger,
		retention: retention,
		interval:  interval,
		logger:    log.WithFields(map[string]interface{}{"component": "retention"}),
	}
}

// Run blocks until ctx is cancelled.
func (s *RetentionSweeper) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *RetentionSweeper) sweep(ctx context.Context) {
	purged, err := s.purger.PurgeOlderThan(ctx, s.retention)
	if err != nil {
		s.logger.Error("retention sweep failed", map[string]interface{}{"error": err.Error()})
		return
	}
	s.logger.Debug("retention sweep finished", map[string]interface{}{"rows": purged})
}
