package store

import (
	"context"
	"log/slog"
	"time"
)

// StartRetentionWorker runs a background goroutine that periodically
// sweeps sessions idle longer than ttl. Retention is optional: callers
// only start the worker when a TTL is configured.
func StartRetentionWorker(ctx context.Context, repo Repository, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("Retention worker started", "interval", interval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				deleted, err := repo.CleanupExpiredSessions(ctx, ttl)
				if err != nil {
					slog.Error("Retention worker failed to cleanup sessions", "error", err)
					continue
				}
				if deleted > 0 {
					slog.Info("Retention worker removed idle sessions", "count", deleted)
				}
			case <-ctx.Done():
				slog.Info("Retention worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}
