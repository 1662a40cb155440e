package strategies

import (
	"github.com/lattice-search/lattice/pkg/routing"
)

// ContextualStrategy scores each candidate from live health, recent spend,
// and observed latency, weighted by the request's stated sensitivities, and
// selects the highest-scoring candidate.
//
// Scoring:
//
//	score = wq*health + wc*(1/(1+recentSpend)) + wl*(1/(1+latencySeconds))
//
// where wq, wc, wl are the request's quality, cost, and latency sensitivities
// normalized to sum to 1. Each component lies in (0, 1], so scores are
// comparable across candidates regardless of absolute spend or latency.
//
// A request with all sensitivities zero (or a nil context) scores on health
// alone, making selection deterministic rather than arbitrary.
type ContextualStrategy struct {
	health  HealthScorer
	costs   CostReader
	latency LatencyReader
}

// NewContextualStrategy creates a context-aware strategy.
// Any collaborator may be nil; a nil collaborator contributes a neutral
// component score for every candidate.
func NewContextualStrategy(health HealthScorer, costs CostReader, latency LatencyReader) *ContextualStrategy {
	return &ContextualStrategy{
		health:  health,
		costs:   costs,
		latency: latency,
	}
}

// Select returns the highest-scoring candidate.
// Ties are broken by input order.
func (s *ContextualStrategy) Select(pctx *routing.ProviderContext, candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", &routing.NoProvidersAvailableError{}
	}

	if len(candidates) == 1 {
		return candidates[0], nil
	}

	wq, wc, wl := normalizeWeights(pctx)

	best := candidates[0]
	bestScore := s.score(best, wq, wc, wl)

	for _, name := range candidates[1:] {
		// Strict comparison keeps the earlier candidate on ties.
		if sc := s.score(name, wq, wc, wl); sc > bestScore {
			best = name
			bestScore = sc
		}
	}

	return best, nil
}

// score computes the weighted composite score for one candidate.
func (s *ContextualStrategy) score(provider string, wq, wc, wl float64) float64 {
	total := 0.0

	if wq > 0 {
		healthScore := 1.0
		if s.health != nil {
			healthScore = s.health.HealthScore(provider)
		}
		total += wq * healthScore
	}

	if wc > 0 {
		spend := 0.0
		if s.costs != nil {
			spend = s.costs.RecentSpend(provider)
		}
		total += wc * (1.0 / (1.0 + spend))
	}

	if wl > 0 {
		seconds := 0.0
		if s.latency != nil {
			seconds = s.latency.AverageResponseTime(provider).Seconds()
		}
		total += wl * (1.0 / (1.0 + seconds))
	}

	return total
}

// normalizeWeights converts the request's sensitivities into weights summing
// to 1. Negative sensitivities are treated as zero. All-zero sensitivities
// collapse to quality-only scoring.
func normalizeWeights(pctx *routing.ProviderContext) (wq, wc, wl float64) {
	if pctx != nil {
		wq = clampNonNegative(pctx.QualityRequirement)
		wc = clampNonNegative(pctx.CostSensitivity)
		wl = clampNonNegative(pctx.LatencySensitivity)
	}

	sum := wq + wc + wl
	if sum == 0 {
		return 1, 0, 0
	}

	return wq / sum, wc / sum, wl / sum
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// GetName returns the strategy name.
func (s *ContextualStrategy) GetName() string {
	return NameContextual
}

// Reset is a no-op; the contextual strategy keeps no per-call state.
func (s *ContextualStrategy) Reset() {}
