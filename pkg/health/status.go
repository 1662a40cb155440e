package health

import "time"

// Status is the coarse health classification of a provider derived from
// recent check results and reported call outcomes.
type Status string

const (
	// StatusHealthy indicates the provider is serving requests normally.
	StatusHealthy Status = "healthy"

	// StatusDegraded indicates the provider is serving requests but has
	// accumulated enough failures to warrant caution.
	StatusDegraded Status = "degraded"

	// StatusUnhealthy indicates the provider should not receive requests.
	// This is also the fail-closed default for providers with no recorded
	// results.
	StatusUnhealthy Status = "unhealthy"
)

// Score returns the numeric health score used for contextual selection and
// the provider_health_score gauge: Healthy=1.0, Degraded=0.5, Unhealthy=0.0.
func (s Status) Score() float64 {
	switch s {
	case StatusHealthy:
		return 1.0
	case StatusDegraded:
		return 0.5
	default:
		return 0.0
	}
}

// CheckResult is the outcome of a single health check, either produced by a
// probe or inferred from an operation outcome reported to the router.
type CheckResult struct {
	// Provider is the provider this result applies to.
	Provider string

	// Healthy reports whether the check succeeded.
	Healthy bool

	// ResponseTime is how long the check (or operation) took.
	ResponseTime time.Duration

	// Err describes the failure. Empty for successful checks.
	Err string
}
