package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog"

	"github.com/mrlokans/readtrack/internal/goodreads"
	"github.com/mrlokans/readtrack/internal/importer"
)

// ImportJobRunner runs a recorded import job.
type ImportJobRunner interface {
	RunJob(ctx context.Context, jobID string, userID uint, rows []goodreads.ImportRow) (importer.Summary, error)
	FailJob(jobID string, cause error)
}

// ImportGoodreadsTask imports a previewed Goodreads selection in the background.
type ImportGoodreadsTask struct {
	JobID  string                `json:"job_id"`
	UserID uint                  `json:"user_id"`
	Rows   []goodreads.ImportRow `json:"rows"`
}

// Config returns the queue configuration for Goodreads import tasks.
// Row failures never fail the task, so a batch is attempted once.
func (t ImportGoodreadsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "import_goodreads",
		MaxAttempts: 1,
		Timeout:     55 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ImportGoodreadsProcessor creates a processor function for ImportGoodreadsTask.
func ImportGoodreadsProcessor(runner ImportJobRunner, log zerolog.Logger) backlite.QueueProcessor[ImportGoodreadsTask] {
	return func(ctx context.Context, task ImportGoodreadsTask) error {
		if runner == nil {
			return fmt.Errorf("import runner not configured")
		}

		summary, err := runner.RunJob(ctx, task.JobID, task.UserID, task.Rows)
		if err != nil {
			runner.FailJob(task.JobID, err)
			return fmt.Errorf("import job %s: %w", task.JobID, err)
		}

		log.Info().
			Str("job_id", task.JobID).
			Int("imported", summary.Imported).
			Int("failed", summary.Failed).
			Msg("Background import finished")
		return nil
	}
}

// NewImportGoodreadsQueue creates a backlite queue for Goodreads import tasks.
func NewImportGoodreadsQueue(runner ImportJobRunner, log zerolog.Logger) backlite.Queue {
	return backlite.NewQueue(ImportGoodreadsProcessor(runner, log))
}
