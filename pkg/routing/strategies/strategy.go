package strategies

import (
	"time"

	"github.com/lattice-search/lattice/pkg/routing"
)

// Strategy names accepted by New and the routing configuration.
const (
	NamePriority   = "priority"
	NameRoundRobin = "round_robin"
	NameContextual = "contextual"
)

// AvailableStrategies returns the valid strategy names.
func AvailableStrategies() []string {
	return []string{NamePriority, NameRoundRobin, NameContextual}
}

// HealthScorer supplies health scores for contextual selection.
// The health monitor implements this interface.
type HealthScorer interface {
	// HealthScore returns 1.0 for healthy, 0.5 for degraded, and 0.0 for
	// unhealthy providers.
	HealthScore(provider string) float64
}

// CostReader supplies recent spend for cost-aware selection.
// The cost tracker implements this interface.
type CostReader interface {
	// RecentSpend returns the provider's spend within the tracker's
	// rolling window, summed across currencies.
	RecentSpend(provider string) float64
}

// LatencyReader supplies observed response times for latency-aware
// selection. The health monitor implements this interface.
type LatencyReader interface {
	// AverageResponseTime returns the smoothed response time for a
	// provider, or zero if none has been observed.
	AverageResponseTime(provider string) time.Duration
}

// Deps carries the collaborators a strategy may need.
// Unused fields may be left zero; each constructor documents what it reads.
type Deps struct {
	// Priorities maps provider name to explicit priority (lower = more
	// preferred). Read by the priority strategy.
	Priorities map[string]int

	// Weights maps provider name to round-robin traffic weight.
	// Read by the round-robin strategy.
	Weights map[string]int

	// Health supplies health scores. Read by the contextual strategy.
	Health HealthScorer

	// Costs supplies recent spend. Read by the contextual strategy.
	Costs CostReader

	// Latency supplies response times. Read by the contextual strategy.
	Latency LatencyReader
}

// New constructs the strategy named by the routing configuration.
// Strategies form a small closed set selected at construction time; there is
// no runtime reflection.
func New(name string, deps Deps) (routing.Strategy, error) {
	switch name {
	case NamePriority:
		return NewPriorityStrategy(deps.Priorities), nil
	case NameRoundRobin:
		return NewRoundRobinStrategy(deps.Weights), nil
	case NameContextual:
		return NewContextualStrategy(deps.Health, deps.Costs, deps.Latency), nil
	default:
		return nil, &routing.InvalidStrategyError{
			Strategy:            name,
			AvailableStrategies: AvailableStrategies(),
		}
	}
}
