package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// newStoreMaintenanceTask compacts the knowledge store and drops expired
// conversation sessions.
func newStoreMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "store_maintenance")

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting scheduled store maintenance task...")
		startTime := time.Now()

		var errs []error
		if err := deps.Store.Maintain(ctx); err != nil {
			errs = append(errs, fmt.Errorf("store maintenance failed: %w", err))
		}
		if deps.Sessions != nil {
			pruned, err := deps.Sessions.Prune(ctx)
			if err != nil {
				errs = append(errs, fmt.Errorf("session prune failed: %w", err))
			} else if pruned > 0 {
				log.InfoContext(ctx, "Pruned expired sessions", "count", pruned)
			}
		}

		duration := time.Since(startTime)
		if err := errors.Join(errs...); err != nil {
			log.ErrorContext(ctx, "Store maintenance task failed", "error", err, "duration", duration)
			return err
		}

		log.InfoContext(ctx, "Scheduled store maintenance task completed successfully", "duration", duration)
		return nil
	}
}
