package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartStaleDetectionSweeper fails detections stuck in processing with interval
func StartStaleDetectionSweeper(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	maxAge time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-maxAge)
				res, err := db.ExecContext(ctx, `
                    UPDATE detections
                       SET status = 'failed',
                           error_message = 'processing timed out',
                           updated_at = now()
                     WHERE status = 'processing'
                       AND updated_at < $1
                `, cutoff)
				if err != nil {
					log.Error("failed to sweep stale detections", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("swept stale detections", zap.Int64("failed", rows))
				}
			}
		}
	}()
}
