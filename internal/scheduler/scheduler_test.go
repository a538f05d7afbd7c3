package scheduler

import (
	"testing"

	"rental-booking-backend/internal/config"
	"rental-booking-backend/internal/jobs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduler_RegistersJobs(t *testing.T) {
	s, err := NewScheduler(jobs.NewJobRunner(nil, nil, nil), config.SchedulerConfig{
		CompleteElapsedBookings: "0 */15 * * * *",
		WarmExchangeRates:       "0 0 * * * *",
	})
	require.NoError(t, err)
	assert.True(t, s.IsRunning())
	assert.Len(t, s.cron.Entries(), 2)
}

func TestNewScheduler_EmptyScheduleDisablesJob(t *testing.T) {
	s, err := NewScheduler(jobs.NewJobRunner(nil, nil, nil), config.SchedulerConfig{
		CompleteElapsedBookings: "0 */15 * * * *",
	})
	require.NoError(t, err)
	assert.Len(t, s.cron.Entries(), 1)
}

func TestNewScheduler_RejectsBadSchedule(t *testing.T) {
	// Five-field specs are rejected because schedules carry seconds.
	_, err := NewScheduler(jobs.NewJobRunner(nil, nil, nil), config.SchedulerConfig{
		CompleteElapsedBookings: "*/15 * * * *",
	})
	assert.ErrorContains(t, err, jobs.CompleteElapsedBookingsJob)
}

func TestStartStop(t *testing.T) {
	s, err := NewScheduler(jobs.NewJobRunner(nil, nil, nil), config.SchedulerConfig{
		WarmExchangeRates: "0 0 * * * *",
	})
	require.NoError(t, err)

	s.Start()
	next := s.NextRun()
	s.Stop()

	require.Len(t, next, 1)
	assert.False(t, next[0].IsZero())
	assert.Equal(t, 0, next[0].Minute())
}
