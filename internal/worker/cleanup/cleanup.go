// Package cleanup removes revocation entries whose tokens have expired on
// their own. Such entries can never match a token that would otherwise
// verify, so deleting them does not change what Resolve accepts.
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dom/notes-api/internal/repository"
)

type RevocationCleanupJob struct {
	revoked  repository.RevokedTokenRepository
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
}

func NewRevocationCleanupJob(revoked repository.RevokedTokenRepository, interval time.Duration, logger *slog.Logger) *RevocationCleanupJob {
	return &RevocationCleanupJob{
		revoked:  revoked,
		logger:   logger,
		interval: interval,
		now:      time.Now,
	}
}

// RunOnce deletes every entry whose expiry is before now. It is idempotent.
func (j *RevocationCleanupJob) RunOnce(ctx context.Context) (int64, error) {
	start := time.Now()

	deleted, err := j.revoked.DeleteExpired(ctx, j.now())
	if err != nil {
		j.logger.Error("revocation cleanup failed", slog.String("error", err.Error()))
		return 0, fmt.Errorf("delete expired revocations: %w", err)
	}

	j.logger.Info("revocation cleanup completed",
		slog.Int64("deleted_count", deleted),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	return deleted, nil
}

// Start runs the job every interval until ctx is cancelled. Failures are
// logged and retried on the next tick.
func (j *RevocationCleanupJob) Start(ctx context.Context) {
	if j.interval <= 0 {
		j.logger.Warn("revocation cleanup disabled", slog.Duration("interval", j.interval))
		return
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.RunOnce(ctx)
		}
	}
}
