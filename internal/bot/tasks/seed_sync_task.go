package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/edgard/plexybot/internal/knowledge"
)

// newSeedSyncTask re-applies the bundled seed, filling fields that were
// deleted or never learned. Learned data is never overwritten.
func newSeedSyncTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "seed_sync")

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting scheduled seed sync task...")
		startTime := time.Now()

		seed, err := knowledge.LoadSeed()
		if err != nil {
			return fmt.Errorf("seed sync failed: %w", err)
		}
		rep, err := deps.Store.ApplySeed(ctx, seed)
		duration := time.Since(startTime)
		if err != nil {
			log.ErrorContext(ctx, "Seed sync task failed", "error", err, "duration", duration)
			return fmt.Errorf("seed sync failed: %w", err)
		}

		log.InfoContext(ctx, "Scheduled seed sync task completed successfully",
			"inserted", rep.Inserted, "updated", rep.Updated, "duration", duration)
		return nil
	}
}
