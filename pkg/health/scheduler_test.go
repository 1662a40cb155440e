package health

import (
	"context"
	"testing"
	"time"
)

type staticLister []string

func (l staticLister) AllProviders() []string { return l }

func TestSchedulerStartInvalidSchedule(t *testing.T) {
	m := NewMonitor(DefaultConfig(), nil)
	s := NewScheduler(m, staticLister{"openai"}, "not a schedule", time.Second)

	if err := s.Start(context.Background()); err == nil {
		t.Error("Start() expected error for invalid schedule, got nil")
	}
}

func TestSchedulerStartEmptyScheduleIsNoop(t *testing.T) {
	m := NewMonitor(DefaultConfig(), nil)
	s := NewScheduler(m, staticLister{"openai"}, "", time.Second)

	if err := s.Start(context.Background()); err != nil {
		t.Errorf("Start() with empty schedule unexpected error: %v", err)
	}
	s.Stop()
}

func TestSchedulerStartAndStop(t *testing.T) {
	m := NewMonitor(DefaultConfig(), nil)
	s := NewScheduler(m, staticLister{"openai"}, "@every 1h", time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() unexpected error: %v", err)
	}

	// Starting again is idempotent.
	if err := s.Start(ctx); err != nil {
		t.Errorf("Start() second call unexpected error: %v", err)
	}

	s.Stop()
	s.Stop()
}

func TestSchedulerSweepProbesAllProviders(t *testing.T) {
	probed := make(map[string]int)
	checker := CheckerFunc(func(ctx context.Context, provider string) CheckResult {
		probed[provider]++
		return CheckResult{Provider: provider, Healthy: true}
	})

	m := NewMonitor(DefaultConfig(), checker)
	s := NewScheduler(m, staticLister{"openai", "qdrant"}, "@every 1h", time.Second)

	s.runSweep(context.Background())

	if probed["openai"] != 1 || probed["qdrant"] != 1 {
		t.Errorf("runSweep() probed = %v, want each provider once", probed)
	}
	if got := m.GetHealth("openai"); got == StatusUnhealthy {
		t.Errorf("GetHealth() after successful probe = %q", got)
	}
}

func TestSchedulerSweepAbortsOnCancelledContext(t *testing.T) {
	probed := 0
	checker := CheckerFunc(func(ctx context.Context, provider string) CheckResult {
		probed++
		return CheckResult{Provider: provider, Healthy: true}
	})

	m := NewMonitor(DefaultConfig(), checker)
	s := NewScheduler(m, staticLister{"openai", "qdrant"}, "@every 1h", time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s.runSweep(ctx)

	if probed != 0 {
		t.Errorf("runSweep() probed %d providers with cancelled context, want 0", probed)
	}
}
