package health

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ProviderLister supplies the set of providers to probe.
// The provider registry implements this interface.
type ProviderLister interface {
	AllProviders() []string
}

// Scheduler runs periodic health probes for every registered provider using
// cron scheduling.
//
// Common schedules:
//   - "@every 30s" - probe every 30 seconds
//   - "@every 5m"  - probe every 5 minutes
//   - "0 * * * *"  - probe at the top of every hour
type Scheduler struct {
	monitor   *Monitor
	providers ProviderLister
	schedule  string
	timeout   time.Duration
	cron      *cron.Cron
	logger    *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a probe scheduler. If schedule is empty, Start is a
// no-op. Timeout bounds each full probe sweep; zero means 30 seconds.
func NewScheduler(monitor *Monitor, providers ProviderLister, schedule string, timeout time.Duration) *Scheduler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Scheduler{
		monitor:   monitor,
		providers: providers,
		schedule:  schedule,
		timeout:   timeout,
		cron:      cron.New(),
		logger:    slog.Default().With("component", "health.scheduler"),
	}
}

// Start begins scheduled probing. It validates the cron expression, registers
// the sweep job, and stops automatically when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("probe schedule not configured, skipping scheduler")
		return nil
	}
	if s.running {
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid probe schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.runSweep(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule health probes: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("health probe scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop halts scheduled probing. Safe to call multiple times.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cron.Stop()
	s.running = false
	s.logger.Info("health probe scheduler stopped")
}

// runSweep probes every registered provider once.
func (s *Scheduler) runSweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	providers := s.providers.AllProviders()
	start := time.Now()

	for _, provider := range providers {
		if sweepCtx.Err() != nil {
			s.logger.Warn("health probe sweep aborted", "reason", sweepCtx.Err())
			return
		}
		status := s.monitor.CheckProvider(sweepCtx, provider)
		s.logger.Debug("probed provider", "provider", provider, "status", string(status))
	}

	s.logger.Debug("health probe sweep complete",
		"providers", len(providers),
		"duration", time.Since(start),
	)
}
