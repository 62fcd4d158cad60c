package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"mercator-hq/retain/pkg/history"
)

// SchedulerConfig contains settings for periodic sweeps.
type SchedulerConfig struct {
	// Cron is a standard five field cron expression. Empty disables the
	// schedule.
	Cron string

	// RunOnStart runs one sweep when the scheduler starts.
	RunOnStart bool

	// HistoryRetention prunes history reports older than this after each
	// sweep. 0 keeps everything.
	HistoryRetention time.Duration
}

// Scheduler runs sweeps on a cron schedule.
type Scheduler struct {
	sweeper *Sweeper
	config  *SchedulerConfig
	history history.Store
	cron    *cron.Cron
	logger  *slog.Logger

	// starts tracks run-on-start sweeps, which cron does not wait for.
	starts sync.WaitGroup

	mu      sync.Mutex
	running bool
	lastRun time.Time
	lastErr error
}

// NewScheduler creates a scheduler for sweeper. store may be nil; it is
// only used for history pruning.
func NewScheduler(sweeper *Sweeper, config *SchedulerConfig, store history.Store) *Scheduler {
	if config == nil {
		config = &SchedulerConfig{}
	}
	return &Scheduler{
		sweeper: sweeper,
		config:  config,
		history: store,
		cron:    cron.New(),
		logger:  slog.Default().With("component", "sweep.scheduler"),
	}
}

// Start registers the cron job and starts the scheduler. The scheduler stops
// when ctx is cancelled.
//
// Common cron expressions:
//   - "0 * * * *"    - Hourly
//   - "0 3 * * *"    - Daily at 3 AM
//   - "0 */6 * * *"  - Every 6 hours
//
// If Cron is empty, the scheduler only honours RunOnStart.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("scheduler already running")
	}

	if s.config.Cron != "" {
		if _, err := cron.ParseStandard(s.config.Cron); err != nil {
			return fmt.Errorf("invalid cron schedule %q: %w", s.config.Cron, err)
		}
		if _, err := s.cron.AddFunc(s.config.Cron, func() {
			s.RunNow(ctx, TriggerSchedule)
		}); err != nil {
			return fmt.Errorf("failed to schedule sweeps: %w", err)
		}
		s.cron.Start()
		s.running = true

		s.logger.Info("sweep scheduler started",
			"schedule", s.config.Cron,
			"source", s.sweeper.Source().String(),
		)

		go func() {
			<-ctx.Done()
			s.Stop()
		}()
	} else {
		s.logger.Info("sweep schedule not configured, skipping scheduler")
	}

	if s.config.RunOnStart {
		s.starts.Add(1)
		go func() {
			defer s.starts.Done()
			s.RunNow(ctx, TriggerStart)
		}()
	}
	return nil
}

// RunNow performs one sweep and prunes history. It is what the cron job
// calls and may also be used for out-of-schedule sweeps such as on reload.
func (s *Scheduler) RunNow(ctx context.Context, trigger string) {
	_, err := s.sweeper.Run(ctx, trigger)

	s.mu.Lock()
	s.lastRun = time.Now()
	s.lastErr = err
	s.mu.Unlock()

	if err != nil && !errors.Is(err, ErrUnsafe) {
		s.logger.Error("scheduled sweep failed", "trigger", trigger, "error", err)
	}

	if s.history == nil || s.config.HistoryRetention <= 0 {
		return
	}
	deleted, err := history.PruneOlderThan(ctx, s.history, s.config.HistoryRetention, time.Now())
	if err != nil {
		s.logger.Error("history pruning failed", "error", err)
		return
	}
	if deleted > 0 {
		s.logger.Info("history pruning completed", "deleted_count", deleted)
	} else {
		s.logger.Debug("history pruning completed, no reports deleted")
	}
}

// Stop stops the scheduler and waits for running sweeps, including the
// run-on-start sweep, to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	wasRunning := s.running
	s.running = false
	s.mu.Unlock()

	// RunNow takes the mutex, so wait for jobs without holding it.
	if wasRunning {
		<-s.cron.Stop().Done()
	}
	s.starts.Wait()
	if wasRunning {
		s.logger.Info("sweep scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled sweep time, or nil.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}

// LastRun returns when the last sweep finished and its error.
func (s *Scheduler) LastRun() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastErr
}

// Check is a readiness check that fails while the last sweep failed. A
// sweep blocked by the safety guard is not a failure.
func (s *Scheduler) Check(ctx context.Context) error {
	_, err := s.LastRun()
	if err != nil && !errors.Is(err, ErrUnsafe) {
		return fmt.Errorf("last sweep failed: %w", err)
	}
	return nil
}
