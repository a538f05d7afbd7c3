package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rental-booking-backend/internal/logger"
	"rental-booking-backend/internal/metrics"
	"rental-booking-backend/internal/service"
	"rental-booking-backend/internal/tracing"
)

const (
	CompleteElapsedBookingsJob = "complete-elapsed-bookings"
	WarmExchangeRatesJob       = "warm-exchange-rates"
	AllJobs                    = "all"
)

const defaultJobTimeout = 5 * time.Minute

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	bookings   service.BookingService
	rates      service.RateLookup
	currencies []string
	timeout    time.Duration
}

// NewJobRunner creates a job runner. currencies lists the codes whose rates
// are refreshed by WarmExchangeRates.
func NewJobRunner(bookings service.BookingService, rates service.RateLookup, currencies []string) *JobRunner {
	return &JobRunner{
		bookings:   bookings,
		rates:      rates,
		currencies: currencies,
		timeout:    defaultJobTimeout,
	}
}

// runWithRecovery wraps job execution with panic recovery, a deadline, a
// span and a run counter.
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) error) (err error) {
	log := logger.WithJob(jobName)
	ctx, cancel := context.WithTimeout(context.Background(), jr.timeout)
	defer cancel()
	ctx, span := tracing.Start(ctx, "job."+jobName)

	defer func() {
		result := "ok"
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", jobName, r)
			result = "panic"
		} else if err != nil {
			result = "error"
		}
		tracing.End(span, err)
		metrics.JobRuns.WithLabelValues(jobName, result).Inc()
		if err != nil {
			log.ErrorContext(ctx, "Job failed", "result", result, "error", err)
		}
	}()

	start := time.Now()
	log.InfoContext(ctx, "Starting job")
	if err = jobFunc(ctx); err != nil {
		return err
	}
	log.InfoContext(ctx, "Job completed", "duration", time.Since(start))
	return nil
}

// CompleteElapsedBookings moves confirmed bookings whose end has passed to completed.
func (jr *JobRunner) CompleteElapsedBookings() error {
	return jr.runWithRecovery(CompleteElapsedBookingsJob, func(ctx context.Context) error {
		n, err := jr.bookings.CompleteElapsedBookings(ctx)
		if err != nil {
			return err
		}
		logger.InfoContext(ctx, "Completed elapsed bookings", "count", n)
		return nil
	})
}

// WarmExchangeRates looks up every configured currency so request paths hit
// the rate cache.
func (jr *JobRunner) WarmExchangeRates() error {
	return jr.runWithRecovery(WarmExchangeRatesJob, func(ctx context.Context) error {
		var errs []error
		for _, code := range jr.currencies {
			rate, err := jr.rates.RateToTarget(ctx, code)
			if err != nil {
				logger.WarnContext(ctx, "Failed to warm exchange rate", "currency", code, "error", err)
				errs = append(errs, fmt.Errorf("%s: %w", code, err))
				continue
			}
			logger.DebugContext(ctx, "Exchange rate warmed", "currency", code, "rate", rate.String())
		}
		return errors.Join(errs...)
	})
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() error {
	return errors.Join(jr.CompleteElapsedBookings(), jr.WarmExchangeRates())
}

// Run executes the named job once.
func (jr *JobRunner) Run(jobName string) error {
	switch jobName {
	case CompleteElapsedBookingsJob:
		return jr.CompleteElapsedBookings()
	case WarmExchangeRatesJob:
		return jr.WarmExchangeRates()
	case AllJobs:
		return jr.RunAll()
	default:
		return fmt.Errorf("unknown job %q (available: %s, %s, %s)", jobName, CompleteElapsedBookingsJob, WarmExchangeRatesJob, AllJobs)
	}
}
