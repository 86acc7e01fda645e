// Package scheduler runs periodic maintenance on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is the work triggered on every tick.
type Job func(ctx context.Context) error

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks that schedule is a standard five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// CleanupScheduler triggers import history cleanup on a cron schedule.
type CleanupScheduler struct {
	schedule string
	job      Job
	log      zerolog.Logger

	cron      *cron.Cron
	entryID   cron.EntryID
	parsed    cron.Schedule
	mu        sync.RWMutex
	isRunning bool
	ctx       context.Context
}

func NewCleanupScheduler(schedule string, job Job, log zerolog.Logger) *CleanupScheduler {
	return &CleanupScheduler{
		schedule: schedule,
		job:      job,
		log:      log.With().Str("component", "cleanup_scheduler").Logger(),
		cron:     cron.New(cron.WithParser(parser)),
	}
}

// Start schedules the job. An empty schedule disables the scheduler.
// The scheduler stops when ctx is cancelled.
func (s *CleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if s.schedule == "" {
		s.log.Info().Msg("Import history cleanup disabled")
		return nil
	}

	parsed, err := parser.Parse(s.schedule)
	if err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}
	s.parsed = parsed
	s.entryID = s.cron.Schedule(parsed, cron.FuncJob(s.run))
	s.ctx = ctx

	s.cron.Start()
	s.isRunning = true

	s.log.Info().
		Str("schedule", s.schedule).
		Time("next_run", parsed.Next(time.Now())).
		Msg("Import history cleanup scheduled")

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running job to finish and stops the scheduler.
func (s *CleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)
	s.isRunning = false
	s.log.Info().Msg("Import history cleanup stopped")
}

// RunNow triggers the job immediately, outside the schedule.
func (s *CleanupScheduler) RunNow() {
	go s.run()
}

func (s *CleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the job fires next, or nil when not scheduled.
func (s *CleanupScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	next := s.parsed.Next(time.Now())
	return &next
}

func (s *CleanupScheduler) run() {
	s.mu.RLock()
	ctx := s.ctx
	s.mu.RUnlock()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := s.job(ctx); err != nil {
		s.log.Error().Err(err).Msg("Import history cleanup failed")
		return
	}
	s.log.Debug().Msg("Import history cleanup triggered")
}
