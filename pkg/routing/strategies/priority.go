package strategies

import (
	"sync"

	"github.com/lattice-search/lattice/pkg/routing"
)

// defaultPriority ranks providers with no configured priority behind every
// configured one.
const defaultPriority = 1 << 30

// PriorityStrategy selects the candidate with the lowest explicit priority
// value (lower = more preferred). Priorities are set out-of-band via
// configuration; ties are broken by input order.
//
// The strategy is thread-safe; priorities may be swapped on configuration
// reload while selections are in flight.
type PriorityStrategy struct {
	mu         sync.RWMutex
	priorities map[string]int
}

// NewPriorityStrategy creates a priority-based strategy.
// Providers absent from the map rank behind all configured providers.
func NewPriorityStrategy(priorities map[string]int) *PriorityStrategy {
	if priorities == nil {
		priorities = make(map[string]int)
	}
	return &PriorityStrategy{priorities: priorities}
}

// Select returns the minimum-priority candidate present in the input list.
func (s *PriorityStrategy) Select(pctx *routing.ProviderContext, candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", &routing.NoProvidersAvailableError{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	best := candidates[0]
	bestPriority := s.priorityOf(best)

	for _, name := range candidates[1:] {
		// Strict comparison keeps the earlier candidate on ties.
		if p := s.priorityOf(name); p < bestPriority {
			best = name
			bestPriority = p
		}
	}

	return best, nil
}

// priorityOf returns the configured priority for a provider.
// Caller must hold s.mu.
func (s *PriorityStrategy) priorityOf(provider string) int {
	if p, ok := s.priorities[provider]; ok {
		return p
	}
	return defaultPriority
}

// UpdatePriorities replaces the priority table.
// Called on configuration reload.
func (s *PriorityStrategy) UpdatePriorities(priorities map[string]int) {
	if priorities == nil {
		priorities = make(map[string]int)
	}

	s.mu.Lock()
	s.priorities = priorities
	s.mu.Unlock()
}

// GetName returns the strategy name.
func (s *PriorityStrategy) GetName() string {
	return NamePriority
}

// Reset is a no-op; the priority strategy keeps no per-call state.
func (s *PriorityStrategy) Reset() {}
