package cleanup

import (
	"context"
	"time"

	"github.com/AlibekovAA/estate-hub/internal/common/logger"
	"github.com/AlibekovAA/estate-hub/internal/observability/metrics"
)

type ExpiredDeleter interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// StartCleanup blocks until ctx is cancelled, sweeping expired records every interval.
func StartCleanup(ctx context.Context, repo ExpiredDeleter, log *logger.Logger, name string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			RunOnce(ctx, repo, log, name)
		}
	}
}

func RunOnce(ctx context.Context, repo ExpiredDeleter, log *logger.Logger, name string) int64 {
	deleted, err := repo.DeleteExpired(ctx)
	if err != nil {
		log.Errorf("%s cleanup failed: %v", name, err)
		return 0
	}
	if deleted > 0 {
		metrics.CleanupDeletedTotal.WithLabelValues(name).Add(float64(deleted))
		log.Infof("%s cleanup: deleted %d expired entries", name, deleted)
	}
	return deleted
}
