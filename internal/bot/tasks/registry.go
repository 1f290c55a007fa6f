package tasks

import (
	"context"

	"github.com/edgard/plexybot/internal/config"
)

// ScheduledTaskFunc is the signature of every scheduled task. Tasks should
// respect ctx cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// RegisterAllTasks returns every task keyed by the name used in the
// scheduler configuration.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := map[string]ScheduledTaskFunc{
		config.TaskStoreMaintenance: newStoreMaintenanceTask(deps),
		config.TaskSeedSync:         newSeedSyncTask(deps),
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
