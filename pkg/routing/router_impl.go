package routing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lattice-search/lattice/pkg/breaker"
	"github.com/lattice-search/lattice/pkg/cost"
	"github.com/lattice-search/lattice/pkg/health"
	"github.com/lattice-search/lattice/pkg/registry"
	"github.com/lattice-search/lattice/pkg/telemetry/metrics"
)

// strategyPreferred is the pseudo-strategy name recorded when the
// preferred-provider fast path made the selection.
const strategyPreferred = "preferred"

// DefaultRouter implements the Router interface with the full filtering and
// selection pipeline.
//
// Selection pipeline, in order: registry candidates for the capability ->
// exclusion filter -> health filter (Unhealthy removed, Degraded kept) ->
// circuit breaker guard -> preferred-provider fast path -> strategy.
//
// A provider with an open circuit is excluded even if the health monitor
// still reports it Healthy; the breaker reacts faster to failure bursts than
// the stepped health status.
type DefaultRouter struct {
	registry *registry.Registry
	monitor  *health.Monitor
	breaker  *breaker.Breaker
	costs    *cost.Tracker
	metrics  *metrics.Collector
	strategy Strategy
	stats    *AtomicRouterStats
	logger   *slog.Logger
}

// NewRouter creates a router over shared component instances.
// The costs and metrics arguments may be nil; reporting to them becomes a
// no-op. All other components are required.
func NewRouter(
	reg *registry.Registry,
	monitor *health.Monitor,
	brk *breaker.Breaker,
	costs *cost.Tracker,
	collector *metrics.Collector,
	strategy Strategy,
) (*DefaultRouter, error) {
	if reg == nil {
		return nil, fmt.Errorf("registry cannot be nil")
	}
	if monitor == nil {
		return nil, fmt.Errorf("health monitor cannot be nil")
	}
	if brk == nil {
		return nil, fmt.Errorf("circuit breaker cannot be nil")
	}
	if strategy == nil {
		return nil, fmt.Errorf("selection strategy cannot be nil")
	}

	return &DefaultRouter{
		registry: reg,
		monitor:  monitor,
		breaker:  brk,
		costs:    costs,
		metrics:  collector,
		strategy: strategy,
		stats:    NewAtomicRouterStats(),
		logger:   slog.Default().With("component", "routing.router"),
	}, nil
}

// SelectEmbeddingProvider selects a provider for the embedding capability.
func (r *DefaultRouter) SelectEmbeddingProvider(pctx *ProviderContext) (string, error) {
	return r.SelectProvider(registry.CapabilityEmbedding, pctx)
}

// SelectVectorStoreProvider selects a provider for the vector store
// capability.
func (r *DefaultRouter) SelectVectorStoreProvider(pctx *ProviderContext) (string, error) {
	return r.SelectProvider(registry.CapabilityVectorStore, pctx)
}

// SelectCacheProvider selects a provider for the cache capability.
func (r *DefaultRouter) SelectCacheProvider(pctx *ProviderContext) (string, error) {
	return r.SelectProvider(registry.CapabilityCache, pctx)
}

// SelectProvider runs the filtering and selection pipeline for a capability
// and returns one provider id.
func (r *DefaultRouter) SelectProvider(capability registry.Capability, pctx *ProviderContext) (string, error) {
	r.stats.IncrementTotal()

	candidates := r.registry.Candidates(capability)
	if len(candidates) == 0 {
		r.stats.IncrementErrors()
		return "", &NoProvidersAvailableError{Capability: string(capability)}
	}

	eligible := r.filterCandidates(candidates, pctx)
	if len(eligible) == 0 {
		r.stats.IncrementErrors()
		return "", &NoProvidersAvailableError{
			Capability: string(capability),
			Candidates: candidates,
		}
	}

	// Preferred-provider fast path: first preferred candidate that
	// survived filtering wins.
	if pctx != nil {
		for _, preferred := range pctx.PreferredProviders {
			for _, name := range eligible {
				if name == preferred {
					r.recordSelection(preferred, strategyPreferred, pctx)
					return preferred, nil
				}
			}
		}
	}

	selected, err := r.strategy.Select(pctx, eligible)
	if err != nil {
		r.stats.IncrementErrors()
		return "", fmt.Errorf("strategy selection failed: %w", err)
	}

	r.recordSelection(selected, r.strategy.GetName(), pctx)
	return selected, nil
}

// filterCandidates applies the exclusion, health, and circuit breaker
// filters, preserving candidate order.
func (r *DefaultRouter) filterCandidates(candidates []string, pctx *ProviderContext) []string {
	eligible := make([]string, 0, len(candidates))
	healthFiltered := false
	circuitFiltered := false

	for _, name := range candidates {
		if pctx.Excluded(name) {
			continue
		}
		if r.monitor.GetHealth(name) == health.StatusUnhealthy {
			healthFiltered = true
			continue
		}
		if !r.breaker.Allow(name) {
			circuitFiltered = true
			continue
		}
		eligible = append(eligible, name)
	}

	if healthFiltered {
		r.stats.IncrementHealthFiltered()
	}
	if circuitFiltered {
		r.stats.IncrementCircuitFiltered()
	}

	return eligible
}

// recordSelection updates statistics and metrics for a completed selection.
func (r *DefaultRouter) recordSelection(provider, strategy string, pctx *ProviderContext) {
	r.stats.IncrementProvider(provider)
	r.stats.IncrementStrategy(strategy)

	if r.metrics != nil {
		r.metrics.RecordSelection(provider, strategy)
	}

	operation := ""
	if pctx != nil {
		operation = pctx.OperationType
	}
	r.logger.Debug("provider selected",
		"provider", provider,
		"strategy", strategy,
		"operation", operation,
	)
}

// ReportSuccess records a successful call outcome for a provider.
// Forwards to the health monitor, circuit breaker, and metrics. Cost is not
// forwarded here; callers report it separately via ReportCost.
func (r *DefaultRouter) ReportSuccess(provider string) {
	if provider == "" {
		return
	}

	r.monitor.RecordResult(health.CheckResult{
		Provider: provider,
		Healthy:  true,
	})
	r.breaker.RecordOutcome(provider, true)

	if r.metrics != nil {
		r.metrics.SetHealthScore(provider, r.monitor.HealthScore(provider))
	}
}

// ReportFailure records a failed call outcome for a provider.
// Circuit-open rejections are not reported here; the breaker already knows
// the provider is bad, and counting them would double-charge it.
func (r *DefaultRouter) ReportFailure(provider string, err error) {
	if provider == "" {
		return
	}
	if errors.Is(err, ErrCircuitOpen) {
		return
	}

	msg := ""
	if err != nil {
		msg = err.Error()
	}

	r.monitor.RecordResult(health.CheckResult{
		Provider: provider,
		Healthy:  false,
		Err:      msg,
	})
	r.breaker.RecordOutcome(provider, false)

	if r.metrics != nil {
		r.metrics.RecordError(provider, classifyError(err))
		r.metrics.SetHealthScore(provider, r.monitor.HealthScore(provider))
	}
}

// ReportCost records spend for a provider to the cost tracker and metrics.
func (r *DefaultRouter) ReportCost(provider string, amount float64, currency string) {
	if provider == "" || amount <= 0 {
		return
	}
	if currency == "" {
		currency = "usd"
	}

	if r.costs != nil {
		r.costs.Record(provider, amount, currency)
	}
	if r.metrics != nil {
		r.metrics.RecordCost(provider, currency, amount)
	}
}

// GetProviderHealth returns the current health status of a provider.
func (r *DefaultRouter) GetProviderHealth(provider string) health.Status {
	return r.monitor.GetHealth(provider)
}

// GetAllHealth returns the health status of every tracked provider.
func (r *DefaultRouter) GetAllHealth() map[string]health.Status {
	return r.monitor.GetAllHealth()
}

// GetStats returns a string-keyed snapshot for the admin surface.
func (r *DefaultRouter) GetStats() map[string]any {
	allHealth := r.monitor.GetAllHealth()

	healthy := 0
	healthMap := make(map[string]string, len(allHealth))
	for provider, status := range allHealth {
		healthMap[provider] = string(status)
		if status == health.StatusHealthy {
			healthy++
		}
	}

	capabilities := make(map[string][]string)
	for _, capability := range registry.Capabilities() {
		capabilities[string(capability)] = r.registry.Candidates(capability)
	}

	snapshot := r.stats.Snapshot()

	return map[string]any{
		"total_providers":     r.registry.Count(),
		"healthy_providers":   healthy,
		"capabilities":        capabilities,
		"health":              healthMap,
		"circuits":            r.circuitSnapshot(),
		"total_selections":    snapshot.TotalSelections,
		"selections":          snapshot.SelectionsPerProvider,
		"strategy_use":        snapshot.StrategyUseCount,
		"selection_errors":    snapshot.Errors,
		"stats_last_reset_at": snapshot.LastResetTime,
	}
}

// circuitSnapshot serializes the breaker state map for the admin surface.
func (r *DefaultRouter) circuitSnapshot() map[string]string {
	snap := r.breaker.Snapshot()
	result := make(map[string]string, len(snap))
	for provider, state := range snap {
		result[provider] = string(state)
	}
	return result
}

// classifyError maps an error to a metrics error_type label.
func classifyError(err error) string {
	switch {
	case err == nil:
		return "unknown"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, ErrNoProvidersAvailable):
		return "no_providers"
	default:
		return "operation_failed"
	}
}
