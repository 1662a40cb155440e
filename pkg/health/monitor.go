package health

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Config contains the thresholds that drive health status transitions.
type Config struct {
	// FailureThreshold is the number of consecutive failures required to
	// step a provider's status down one level (Healthy -> Degraded ->
	// Unhealthy). Default: 3.
	FailureThreshold int

	// SuccessThreshold is the number of consecutive successes required to
	// step a provider's status up one level (Unhealthy -> Degraded ->
	// Healthy). Default: 1.
	SuccessThreshold int

	// LatencySmoothing is the exponential smoothing factor applied to
	// observed response times, in (0, 1]. Higher values weight recent
	// observations more. Default: 0.3.
	LatencySmoothing float64
}

// DefaultConfig returns the default monitor thresholds.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 3,
		SuccessThreshold: 1,
		LatencySmoothing: 0.3,
	}
}

// providerState is the recorded evidence for a single provider.
type providerState struct {
	status               Status
	consecutiveFailures  int
	consecutiveSuccesses int
	lastResult           CheckResult
	lastChecked          time.Time
	avgResponseTime      time.Duration
}

// Monitor maintains the current health status of every provider from
// reported check results.
//
// Status transitions are monotonic responses to evidence: FailureThreshold
// consecutive failures step the status down one level, SuccessThreshold
// consecutive successes step it up one level. A provider with no recorded
// results is Unhealthy (fail-closed); absence of data is itself meaningful,
// so no error is returned for unknown providers.
//
// Transitions are linearizable per provider: concurrent reports to the same
// provider are applied in some total order under the monitor's lock. The
// critical sections are short and never span I/O.
type Monitor struct {
	config  Config
	checker Checker
	logger  *slog.Logger

	mu     sync.RWMutex
	states map[string]*providerState
}

// NewMonitor creates a health monitor with the given thresholds and an
// injected health-check probe. The checker may be nil if CheckProvider is
// never used (e.g., when all evidence comes from reported call outcomes).
func NewMonitor(config Config, checker Checker) *Monitor {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 3
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = 1
	}
	if config.LatencySmoothing <= 0 || config.LatencySmoothing > 1 {
		config.LatencySmoothing = 0.3
	}

	return &Monitor{
		config:  config,
		checker: checker,
		logger:  slog.Default().With("component", "health.monitor"),
		states:  make(map[string]*providerState),
	}
}

// CheckProvider invokes the injected health probe for the provider, records
// the result, and returns the resulting status.
func (m *Monitor) CheckProvider(ctx context.Context, provider string) Status {
	if m.checker == nil {
		return m.GetHealth(provider)
	}

	result := m.checker.CheckHealth(ctx, provider)
	result.Provider = provider
	m.RecordResult(result)
	return m.GetHealth(provider)
}

// RecordResult updates the provider's status from a check result.
//
// A failure increments the consecutive-failure counter; reaching
// FailureThreshold steps the status down one level and resets the counter so
// the next step requires fresh evidence. A success resets the failure counter
// and, after SuccessThreshold consecutive successes, steps the status up one
// level.
func (m *Monitor) RecordResult(result CheckResult) {
	if result.Provider == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.states[result.Provider]
	if !ok {
		// First evidence for this provider. Start from the fail-closed
		// default and let the result move it.
		state = &providerState{status: StatusUnhealthy}
		m.states[result.Provider] = state
	}

	state.lastResult = result
	state.lastChecked = time.Now()

	if result.ResponseTime > 0 {
		if state.avgResponseTime == 0 {
			state.avgResponseTime = result.ResponseTime
		} else {
			a := m.config.LatencySmoothing
			state.avgResponseTime = time.Duration(
				a*float64(result.ResponseTime) + (1-a)*float64(state.avgResponseTime))
		}
	}

	before := state.status

	if result.Healthy {
		state.consecutiveFailures = 0
		state.consecutiveSuccesses++

		if state.consecutiveSuccesses >= m.config.SuccessThreshold {
			state.status = stepUp(state.status)
			if state.status != before {
				state.consecutiveSuccesses = 0
			}
		}
	} else {
		state.consecutiveSuccesses = 0
		state.consecutiveFailures++

		if state.consecutiveFailures >= m.config.FailureThreshold {
			state.status = stepDown(state.status)
			state.consecutiveFailures = 0
		}
	}

	if state.status != before {
		m.logger.Info("provider health status changed",
			"provider", result.Provider,
			"from", string(before),
			"to", string(state.status),
			"error", result.Err,
		)
	}
}

// GetHealth returns the current status of a provider.
// Providers with no recorded results are Unhealthy.
func (m *Monitor) GetHealth(provider string) Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if state, ok := m.states[provider]; ok {
		return state.status
	}
	return StatusUnhealthy
}

// HealthScore returns the numeric health score for a provider.
// Implements the strategies.HealthScorer contract.
func (m *Monitor) HealthScore(provider string) float64 {
	return m.GetHealth(provider).Score()
}

// AverageResponseTime returns the smoothed response time observed for a
// provider, or zero if no timed results have been recorded.
func (m *Monitor) AverageResponseTime(provider string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if state, ok := m.states[provider]; ok {
		return state.avgResponseTime
	}
	return 0
}

// GetAllHealth returns a snapshot of the status of every provider with
// recorded results. Used for observability only.
func (m *Monitor) GetAllHealth() map[string]Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make(map[string]Status, len(m.states))
	for provider, state := range m.states {
		all[provider] = state.status
	}
	return all
}

// LastResult returns the most recent check result for a provider.
// The second return value reports whether any result has been recorded.
func (m *Monitor) LastResult(provider string) (CheckResult, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if state, ok := m.states[provider]; ok {
		return state.lastResult, true
	}
	return CheckResult{}, false
}

// stepUp moves a status one level toward Healthy.
func stepUp(s Status) Status {
	switch s {
	case StatusUnhealthy:
		return StatusDegraded
	default:
		return StatusHealthy
	}
}

// stepDown moves a status one level toward Unhealthy.
func stepDown(s Status) Status {
	switch s {
	case StatusHealthy:
		return StatusDegraded
	default:
		return StatusUnhealthy
	}
}
