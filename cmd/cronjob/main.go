package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rental-booking-backend/internal/app"
	"rental-booking-backend/internal/config"
	"rental-booking-backend/internal/jobs"
	"rental-booking-backend/internal/logger"
	"rental-booking-backend/internal/scheduler"
	"rental-booking-backend/internal/tracing"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.example.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", fmt.Sprintf("Run a specific job once and exit (%s, %s, %s)",
		jobs.CompleteElapsedBookingsJob, jobs.WarmExchangeRatesJob, jobs.AllJobs))
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Rental Booking Cronjob Runner...", "log_level", cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := tracing.Init(ctx, cfg.Tracing.Endpoint, cfg.Tracing.ServiceName+"-cronjob")
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error("Failed to flush traces", "error", err)
		}
	}()

	application, err := app.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize application", "error", err)
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer application.Close()

	jobRunner := jobs.NewJobRunner(application.Bookings, application.Rates, cfg.Scheduler.WarmCurrencies)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		if err := jobRunner.Run(*runOnce); err != nil {
			logger.Error("Job execution failed", "job", *runOnce, "error", err)
			application.Close()
			os.Exit(1)
		}
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	cronScheduler, err := scheduler.NewScheduler(jobRunner, cfg.Scheduler)
	if err != nil {
		logger.Error("Failed to create scheduler", "error", err)
		application.Close()
		os.Exit(1)
	}

	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	<-ctx.Done()

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}
