package routing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lattice-search/lattice/pkg/breaker"
	"github.com/lattice-search/lattice/pkg/health"
	"github.com/lattice-search/lattice/pkg/telemetry/metrics"
)

// Operation is a unit of work parameterized by provider id, supplied by the
// calling service (e.g., "call embedding provider X with these texts").
//
// An Operation must respect context cancellation and return the context's
// error when cancelled, so the failover manager can distinguish caller
// cancellation from a provider failure.
type Operation func(ctx context.Context, provider string) error

// FailoverManager drives retries of an operation across alternate providers
// under a selection strategy and a strict attempt budget.
//
// The manager suspends only while awaiting the caller-supplied operation;
// selection and reporting never block on network I/O.
type FailoverManager struct {
	monitor  *health.Monitor
	breaker  *breaker.Breaker
	metrics  *metrics.Collector
	strategy Strategy
	logger   *slog.Logger
}

// NewFailoverManager creates a failover manager over shared component
// instances. The metrics collector may be nil.
func NewFailoverManager(
	monitor *health.Monitor,
	brk *breaker.Breaker,
	collector *metrics.Collector,
	strategy Strategy,
) (*FailoverManager, error) {
	if monitor == nil {
		return nil, fmt.Errorf("health monitor cannot be nil")
	}
	if brk == nil {
		return nil, fmt.Errorf("circuit breaker cannot be nil")
	}
	if strategy == nil {
		return nil, fmt.Errorf("selection strategy cannot be nil")
	}

	return &FailoverManager{
		monitor:  monitor,
		breaker:  brk,
		metrics:  collector,
		strategy: strategy,
		logger:   slog.Default().With("component", "routing.failover"),
	}, nil
}

// FailoverCandidates returns all minus exclude minus currently-unhealthy
// providers, preserving the relative order of all. It is a pure function of
// current health state with no side effects.
func (m *FailoverManager) FailoverCandidates(all []string, exclude []string) []string {
	excluded := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		excluded[name] = struct{}{}
	}

	eligible := make([]string, 0, len(all))
	for _, name := range all {
		if _, skip := excluded[name]; skip {
			continue
		}
		if m.monitor.GetHealth(name) == health.StatusUnhealthy {
			continue
		}
		eligible = append(eligible, name)
	}
	return eligible
}

// SelectProvider filters candidates through the circuit breaker guard and
// delegates to the configured strategy.
func (m *FailoverManager) SelectProvider(candidates []string, pctx *ProviderContext) (string, error) {
	permitted := make([]string, 0, len(candidates))
	for _, name := range candidates {
		if m.breaker.Allow(name) {
			permitted = append(permitted, name)
		}
	}

	if len(permitted) == 0 {
		return "", &NoProvidersAvailableError{Candidates: candidates}
	}

	return m.strategy.Select(pctx, permitted)
}

// ExecuteWithFailover repeatedly selects a candidate and invokes the
// operation against it until one call succeeds or the attempt budget is
// exhausted.
//
// Per attempt: eligible candidates are recomputed (excluding ones already
// attempted in this run), one is selected via the strategy, and the
// operation is invoked at most once. On failure the outcome is recorded to
// the health monitor and circuit breaker and the candidate joins the
// attempted set. The operation is invoked at most fctx.MaxAttempts times
// total.
//
// Caller cancellation is not a provider failure: if ctx is cancelled while
// an attempt is in flight, the attempt is abandoned without charging the
// provider's health or consuming an attempted-set entry, and the context
// error is returned as-is.
func (m *FailoverManager) ExecuteWithFailover(
	ctx context.Context,
	candidates []string,
	fctx *FailoverContext,
	pctx *ProviderContext,
	op Operation,
) (*FailoverResult, error) {
	if fctx == nil {
		fctx = NewFailoverContext("", 1)
	}
	if op == nil {
		return nil, fmt.Errorf("operation cannot be nil")
	}

	runID := uuid.New().String()
	start := time.Now()
	attempts := 0
	var lastErr error

	for attempts < fctx.MaxAttempts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		eligible := m.FailoverCandidates(candidates, fctx.AttemptedProviders())
		if pctx != nil && len(pctx.ExcludedProviders) > 0 {
			eligible = m.FailoverCandidates(eligible, pctx.ExcludedProviders)
		}

		provider, err := m.SelectProvider(eligible, pctx)
		if err != nil {
			// Structural error: nothing left to try. Fail fast.
			if attempts == 0 {
				return nil, err
			}
			return nil, &FailoverExhaustedError{
				Attempts:           attempts,
				AttemptedProviders: fctx.AttemptedProviders(),
				LastErr:            lastErr,
			}
		}

		attempts++
		opErr := m.invoke(ctx, provider, fctx.OperationType, op)

		if opErr == nil {
			m.reportSuccess(provider)
			m.logger.Debug("failover run succeeded",
				"run_id", runID,
				"provider", provider,
				"attempts", attempts,
			)
			return &FailoverResult{
				Provider: provider,
				Attempts: attempts,
				RunID:    runID,
				Duration: time.Since(start),
			}, nil
		}

		// Caller cancellation: abandon the in-flight attempt without
		// charging the provider.
		if ctx.Err() != nil && (errors.Is(opErr, context.Canceled) || errors.Is(opErr, context.DeadlineExceeded)) {
			m.logger.Debug("failover run cancelled",
				"run_id", runID,
				"provider", provider,
				"attempts", attempts,
			)
			return nil, opErr
		}

		lastErr = &OperationFailedError{Provider: provider, Cause: opErr}
		m.reportFailure(provider, opErr)
		fctx.MarkAttempted(provider)

		m.logger.Warn("failover attempt failed",
			"run_id", runID,
			"provider", provider,
			"attempt", attempts,
			"max_attempts", fctx.MaxAttempts,
			"error", opErr,
		)
	}

	return nil, &FailoverExhaustedError{
		Attempts:           attempts,
		AttemptedProviders: fctx.AttemptedProviders(),
		LastErr:            lastErr,
	}
}

// invoke runs one operation attempt with metrics instrumentation.
func (m *FailoverManager) invoke(ctx context.Context, provider, operation string, op Operation) error {
	if m.metrics != nil {
		m.metrics.IncActiveConnections(provider)
		defer m.metrics.DecActiveConnections(provider)
	}

	start := time.Now()
	err := op(ctx, provider)
	elapsed := time.Since(start)

	if m.metrics != nil {
		m.metrics.RecordResponseTime(provider, operation, elapsed)
		status := "success"
		if err != nil {
			status = "failure"
		}
		m.metrics.RecordRequest(provider, operation, status)
	}

	return err
}

// reportSuccess forwards a successful outcome to the health monitor,
// circuit breaker, and metrics.
func (m *FailoverManager) reportSuccess(provider string) {
	m.monitor.RecordResult(health.CheckResult{
		Provider: provider,
		Healthy:  true,
	})
	m.breaker.RecordOutcome(provider, true)

	if m.metrics != nil {
		m.metrics.SetHealthScore(provider, m.monitor.HealthScore(provider))
	}
}

// reportFailure forwards a failed outcome to the health monitor, circuit
// breaker, and metrics.
func (m *FailoverManager) reportFailure(provider string, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}

	m.monitor.RecordResult(health.CheckResult{
		Provider: provider,
		Healthy:  false,
		Err:      msg,
	})
	m.breaker.RecordOutcome(provider, false)

	if m.metrics != nil {
		m.metrics.RecordError(provider, classifyError(err))
		m.metrics.SetHealthScore(provider, m.monitor.HealthScore(provider))
	}
}
