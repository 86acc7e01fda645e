package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrlokans/readtrack/internal/entities"
	"github.com/mrlokans/readtrack/internal/goodreads"
	"github.com/mrlokans/readtrack/internal/metrics"
)

// ErrUnauthenticated is returned when an import is requested without a user.
var ErrUnauthenticated = errors.New("authentication required")

// ErrInterrupted is returned when the context ends before a batch finishes.
// Rows reached after that point are counted as failed.
var ErrInterrupted = errors.New("import interrupted")

// JobStore records import history.
type JobStore interface {
	Create(userID uint, source entities.ImportSource, totalRows int) (*entities.ImportJob, error)
	MarkRunning(id string) error
	UpdateProgress(id string, processed, imported, failed int) error
	Complete(id string, imported, failed int, message string) error
	Fail(id string, cause error) error
}

// Service is the entry point for Goodreads imports.
type Service struct {
	orchestrator *Orchestrator
	jobs         JobStore
	recorder     metrics.Recorder
	log          zerolog.Logger
}

func NewService(orchestrator *Orchestrator, jobs JobStore, recorder metrics.Recorder, log zerolog.Logger) *Service {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Service{
		orchestrator: orchestrator,
		jobs:         jobs,
		recorder:     recorder,
		log:          log.With().Str("component", "import_service").Logger(),
	}
}

// Preview parses an export so the user can choose which rows to import.
func (s *Service) Preview(r io.Reader) ([]goodreads.ImportRow, error) {
	return goodreads.ParseExport(r)
}

// Import imports the selected rows for userID and records the batch in the
// import history.
func (s *Service) Import(ctx context.Context, userID uint, rows []goodreads.ImportRow) (Summary, error) {
	if userID == 0 {
		return Summary{}, ErrUnauthenticated
	}

	job, err := s.jobs.Create(userID, entities.ImportSourceGoodreads, len(goodreads.Selected(rows)))
	if err != nil {
		return Summary{}, fmt.Errorf("failed to record import job: %w", err)
	}
	return s.RunJob(ctx, job.ID, userID, rows)
}

// ImportFile parses an export and imports every row in it.
func (s *Service) ImportFile(ctx context.Context, userID uint, r io.Reader) (Summary, error) {
	if userID == 0 {
		return Summary{}, ErrUnauthenticated
	}

	rows, err := goodreads.ParseExport(r)
	if err != nil {
		return Summary{}, err
	}
	return s.Import(ctx, userID, rows)
}

// CreateJob records a pending import so it can be processed in the background.
func (s *Service) CreateJob(userID uint, rows []goodreads.ImportRow) (*entities.ImportJob, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	return s.jobs.Create(userID, entities.ImportSourceGoodreads, len(goodreads.Selected(rows)))
}

// RunJob imports rows for an already recorded job, keeping the job's status and
// counters current. Failures to update the job are logged and do not stop the import.
// A job whose context ends mid-batch is marked failed with ErrInterrupted.
func (s *Service) RunJob(ctx context.Context, jobID string, userID uint, rows []goodreads.ImportRow) (Summary, error) {
	if userID == 0 {
		if err := s.jobs.Fail(jobID, ErrUnauthenticated); err != nil {
			s.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to mark import job failed")
		}
		return Summary{}, ErrUnauthenticated
	}

	log := s.log.With().Str("job_id", jobID).Uint("user_id", userID).Logger()
	if err := s.jobs.MarkRunning(jobID); err != nil {
		log.Error().Err(err).Msg("Failed to mark import job running")
	}

	start := time.Now()
	summary := s.orchestrator.RunWithProgress(ctx, userID, rows, func(p Progress) {
		if err := s.jobs.UpdateProgress(jobID, p.Processed, p.Imported, p.Failed); err != nil {
			log.Warn().Err(err).Msg("Failed to update import progress")
		}
	})
	duration := time.Since(start)

	s.recorder.RecordBatch(string(entities.ImportSourceGoodreads), summary.Imported, summary.Failed, duration)

	if ctxErr := ctx.Err(); ctxErr != nil {
		err := fmt.Errorf("%w: %v (%d imported, %d failed)", ErrInterrupted, ctxErr, summary.Imported, summary.Failed)
		if failErr := s.jobs.Fail(jobID, err); failErr != nil {
			log.Error().Err(failErr).Msg("Failed to mark import job failed")
		}
		log.Warn().Err(err).Dur("duration", duration).Msg("Goodreads import interrupted")
		return summary, err
	}

	if err := s.jobs.Complete(jobID, summary.Imported, summary.Failed, summary.Message); err != nil {
		log.Error().Err(err).Msg("Failed to complete import job")
	}

	log.Info().
		Int("imported", summary.Imported).
		Int("failed", summary.Failed).
		Dur("duration", duration).
		Msg("Goodreads import completed")

	return summary, nil
}

// FailJob marks a job failed without running it.
func (s *Service) FailJob(jobID string, cause error) {
	if err := s.jobs.Fail(jobID, cause); err != nil {
		s.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to mark import job failed")
	}
}
