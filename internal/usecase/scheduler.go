package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"ContentCurator/internal/ports"
)

// Runner executes one complete curation run.
type Runner interface {
	RunOnce(ctx context.Context) error
}

// Scheduler wires the cron-like driver with the workflow runner.
type Scheduler struct {
	driver ports.Scheduler
	runner Runner
	logger *slog.Logger
	runs   atomic.Int64
}

// NewScheduler returns a helper to start/stop recurring runs.
func NewScheduler(driver ports.Scheduler, runner Runner, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scheduler{driver: driver, runner: runner, logger: logger}
}

// Start registers the runner with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.runner == nil {
		return nil
	}

	job := func(trigger time.Time) {
		n := s.runs.Add(1)
		s.logger.Info("scheduled run triggered", "run", n, "trigger", trigger)
		if err := s.runner.RunOnce(ctx); err != nil {
			s.logger.Error("scheduled run failed", "run", n, "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Runs reports how many runs were triggered.
func (s *Scheduler) Runs() int64 {
	return s.runs.Load()
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
