package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog"
)

// DefaultImportHistoryRetentionDays applies when no retention is configured.
const DefaultImportHistoryRetentionDays = 90

// ImportHistoryCleaner deletes finished import jobs.
type ImportHistoryCleaner interface {
	DeleteOlderThan(cutoff time.Time) (int64, error)
}

// CleanupImportHistoryTask removes import jobs older than the retention period.
type CleanupImportHistoryTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for import history cleanup tasks.
func (t CleanupImportHistoryTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_import_history",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupImportHistoryProcessor creates a processor function for CleanupImportHistoryTask.
func CleanupImportHistoryProcessor(cleaner ImportHistoryCleaner, log zerolog.Logger) backlite.QueueProcessor[CleanupImportHistoryTask] {
	return func(ctx context.Context, task CleanupImportHistoryTask) error {
		if cleaner == nil {
			return fmt.Errorf("import history cleaner not configured")
		}

		retentionDays := task.RetentionDays
		if retentionDays <= 0 {
			retentionDays = DefaultImportHistoryRetentionDays
		}
		cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

		deleted, err := cleaner.DeleteOlderThan(cutoff)
		if err != nil {
			return fmt.Errorf("cleanup import history: %w", err)
		}

		log.Info().Int64("deleted", deleted).Int("retention_days", retentionDays).Msg("Cleaned up import history")
		return nil
	}
}

// NewCleanupImportHistoryQueue creates a backlite queue for import history cleanup tasks.
func NewCleanupImportHistoryQueue(cleaner ImportHistoryCleaner, log zerolog.Logger) backlite.Queue {
	return backlite.NewQueue(CleanupImportHistoryProcessor(cleaner, log))
}
