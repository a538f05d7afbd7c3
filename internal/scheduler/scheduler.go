package scheduler

import (
	"fmt"
	"time"

	"rental-booking-backend/internal/config"
	"rental-booking-backend/internal/jobs"
	"rental-booking-backend/internal/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a scheduler and registers every job on its configured
// schedule. Schedules use six fields (with seconds) and are evaluated in UTC.
func NewScheduler(jobRunner *jobs.JobRunner, cfg config.SchedulerConfig) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}
	if err := s.registerJobs(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// registerJobs registers all scheduled jobs with the cron scheduler
func (s *Scheduler) registerJobs(cfg config.SchedulerConfig) error {
	entries := []struct {
		name     string
		schedule string
		run      func() error
	}{
		{jobs.CompleteElapsedBookingsJob, cfg.CompleteElapsedBookings, s.jobs.CompleteElapsedBookings},
		{jobs.WarmExchangeRatesJob, cfg.WarmExchangeRates, s.jobs.WarmExchangeRates},
	}

	for _, e := range entries {
		if e.schedule == "" {
			logger.Info("Job disabled", "job", e.name)
			continue
		}
		run := e.run
		if _, err := s.cron.AddFunc(e.schedule, func() { _ = run() }); err != nil {
			return fmt.Errorf("failed to register %s job with schedule %q: %w", e.name, e.schedule, err)
		}
		logger.Info("Job registered", "job", e.name, "schedule", e.schedule)
	}

	logger.Info("All cron jobs registered successfully", "count", len(s.cron.Entries()))
	return nil
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop gracefully stops the cron scheduler, waiting for running jobs
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// IsRunning returns true if the scheduler has registered jobs
func (s *Scheduler) IsRunning() bool {
	return len(s.cron.Entries()) > 0
}

// NextRun returns the next activation time of every registered job.
func (s *Scheduler) NextRun() []time.Time {
	entries := s.cron.Entries()
	next := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		next = append(next, e.Next)
	}
	return next
}
