package strategies

import (
	"sync"
	"sync/atomic"

	"github.com/lattice-search/lattice/pkg/routing"
)

// RoundRobinStrategy distributes selections evenly across candidates using a
// single shared rotation counter, with optional weighting to send more
// traffic to specific providers.
//
// Each call atomically increments the counter and returns
// candidates[counter mod len(candidates)]. Fairness is approximate under
// concurrent access: increments may interleave with changes to the candidate
// list, but every call returns one valid candidate from the list it was
// given, never a stale or excluded one.
type RoundRobinStrategy struct {
	// counter is the shared rotation counter.
	counter atomic.Int64

	mu sync.RWMutex

	// weights maps provider names to their weights (default 1).
	// Zero or negative weight excludes the provider from weighted rotation.
	weights map[string]int
}

// NewRoundRobinStrategy creates a round-robin strategy.
// Weights is optional; if nil or empty, all providers rotate with equal
// weight.
func NewRoundRobinStrategy(weights map[string]int) *RoundRobinStrategy {
	if weights == nil {
		weights = make(map[string]int)
	}
	return &RoundRobinStrategy{weights: weights}
}

// Select returns the next candidate in rotation.
func (s *RoundRobinStrategy) Select(pctx *routing.ProviderContext, candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", &routing.NoProvidersAvailableError{}
	}

	if len(candidates) == 1 {
		return candidates[0], nil
	}

	rotation := s.buildWeightedList(candidates)
	if len(rotation) == 0 {
		// All candidates have zero weight; fall back to unweighted.
		rotation = candidates
	}

	count := s.counter.Add(1) - 1

	// Reset the counter before it grows unbounded. The CAS keeps the reset
	// race-free: a losing reset simply leaves the larger value in place.
	if count >= 1_000_000_000 {
		s.counter.CompareAndSwap(count+1, 0)
		count = 0
	}

	return rotation[int(count%int64(len(rotation)))], nil
}

// buildWeightedList expands candidates by weight, so a provider with weight
// 2 appears twice in the rotation.
func (s *RoundRobinStrategy) buildWeightedList(candidates []string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.weights) == 0 {
		return candidates
	}

	var result []string
	for _, name := range candidates {
		weight := 1
		if w, ok := s.weights[name]; ok {
			weight = w
		}
		if weight <= 0 {
			continue
		}
		for i := 0; i < weight; i++ {
			result = append(result, name)
		}
	}
	return result
}

// UpdateWeights replaces the weight table.
// Called on configuration reload.
func (s *RoundRobinStrategy) UpdateWeights(weights map[string]int) {
	if weights == nil {
		weights = make(map[string]int)
	}

	s.mu.Lock()
	s.weights = weights
	s.mu.Unlock()
}

// GetName returns the strategy name.
func (s *RoundRobinStrategy) GetName() string {
	return NameRoundRobin
}

// Reset resets the rotation counter. Primarily for tests.
func (s *RoundRobinStrategy) Reset() {
	s.counter.Store(0)
}
