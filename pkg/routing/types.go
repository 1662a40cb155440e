package routing

import (
	"time"
)

// ProviderContext describes the sensitivities of one logical operation and
// steers provider selection.
//
// The three sensitivity dials are independent and are not required to sum to
// one; strategies normalize them internally. All fields are optional: a zero
// ProviderContext yields a deterministic, health-driven selection.
type ProviderContext struct {
	// OperationType names the logical operation (e.g., "embed_batch",
	// "vector_search"). Used for metrics labels and logging.
	OperationType string

	// CostSensitivity in [0,1] biases selection toward cheaper providers.
	CostSensitivity float64

	// QualityRequirement in [0,1] biases selection toward healthier
	// providers.
	QualityRequirement float64

	// LatencySensitivity in [0,1] biases selection toward faster providers.
	LatencySensitivity float64

	// ExpectedLoad is an advisory count of calls the caller expects to make.
	ExpectedLoad int

	// PreferredProviders are tried in order before the ranked remainder.
	// A preferred provider that is excluded, unhealthy, or circuit-open is
	// skipped.
	PreferredProviders []string

	// ExcludedProviders are never selected, regardless of health.
	ExcludedProviders []string

	// MaxBudget is an optional spend ceiling for the operation.
	// Zero means no ceiling.
	MaxBudget float64

	// UserID optionally attributes the operation to a user.
	UserID string

	// Region optionally scopes the operation to a deployment region.
	Region string
}

// Excluded reports whether a provider is excluded by this context.
func (c *ProviderContext) Excluded(provider string) bool {
	if c == nil {
		return false
	}
	for _, name := range c.ExcludedProviders {
		if name == provider {
			return true
		}
	}
	return false
}

// FailoverContext carries the retry budget and bookkeeping for one failover
// run. It is not safe for concurrent use; each run owns its context.
type FailoverContext struct {
	// OperationType names the logical operation being retried.
	OperationType string

	// MaxAttempts strictly bounds total operation invocations across all
	// candidates in this run. Must be >= 1.
	MaxAttempts int

	// attempted tracks candidates already tried in this run.
	attempted map[string]struct{}
}

// NewFailoverContext creates a failover context with the given attempt
// budget. MaxAttempts below 1 is raised to 1.
func NewFailoverContext(operationType string, maxAttempts int) *FailoverContext {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &FailoverContext{
		OperationType: operationType,
		MaxAttempts:   maxAttempts,
		attempted:     make(map[string]struct{}),
	}
}

// MarkAttempted records that a candidate was tried in this run.
func (f *FailoverContext) MarkAttempted(provider string) {
	if f.attempted == nil {
		f.attempted = make(map[string]struct{})
	}
	f.attempted[provider] = struct{}{}
}

// Attempted reports whether a candidate was already tried in this run.
func (f *FailoverContext) Attempted(provider string) bool {
	_, ok := f.attempted[provider]
	return ok
}

// AttemptedProviders returns the candidates tried so far, in no particular
// order.
func (f *FailoverContext) AttemptedProviders() []string {
	names := make([]string, 0, len(f.attempted))
	for name := range f.attempted {
		names = append(names, name)
	}
	return names
}

// FailoverResult describes a successful failover run.
type FailoverResult struct {
	// Provider is the provider that served the operation.
	Provider string

	// Attempts is the number of operation invocations made, including the
	// successful one.
	Attempts int

	// RunID uniquely identifies this failover run in logs.
	RunID string

	// Duration is the total wall time of the run.
	Duration time.Duration
}

// RouterStats is a point-in-time snapshot of routing statistics.
type RouterStats struct {
	// TotalSelections is the total number of selection requests processed.
	TotalSelections int64

	// SelectionsPerProvider tracks selections per provider.
	SelectionsPerProvider map[string]int64

	// StrategyUseCount tracks how many times each strategy made the
	// selection (including the "preferred" fast path).
	StrategyUseCount map[string]int64

	// HealthFilteredCount is the number of selections where at least one
	// candidate was removed for health reasons.
	HealthFilteredCount int64

	// CircuitFilteredCount is the number of selections where at least one
	// candidate was removed by an open circuit.
	CircuitFilteredCount int64

	// Errors is the total number of selection errors.
	Errors int64

	// LastResetTime is when statistics were last reset.
	LastResetTime time.Time
}
