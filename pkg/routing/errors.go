package routing

import (
	"errors"
	"fmt"
	"strings"
)

// Common routing errors that can be checked with errors.Is().
var (
	// ErrNoProvidersAvailable is returned when the candidate pool is empty
	// after exclusion, health, and circuit filtering. Not retried: retrying
	// cannot change the outcome.
	ErrNoProvidersAvailable = errors.New("no providers available")

	// ErrCircuitOpen is returned when a specific call was blocked by an
	// open circuit breaker.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrOperationFailed is returned when a caller-supplied operation
	// failed against a specific provider.
	ErrOperationFailed = errors.New("operation failed")

	// ErrFailoverExhausted is returned when all attempts within the
	// failover budget failed.
	ErrFailoverExhausted = errors.New("failover attempts exhausted")

	// ErrInvalidStrategy is returned when an unknown selection strategy is
	// configured.
	ErrInvalidStrategy = errors.New("invalid selection strategy")
)

// NoProvidersAvailableError is returned when no provider survives the
// filtering pipeline for a selection request.
type NoProvidersAvailableError struct {
	// Capability is the capability the selection was for, if known.
	Capability string

	// Candidates contains the providers that were considered before
	// filtering.
	Candidates []string
}

// Error implements the error interface.
func (e *NoProvidersAvailableError) Error() string {
	if e.Capability == "" {
		return fmt.Sprintf("no providers available (considered: %s)", strings.Join(e.Candidates, ", "))
	}
	return fmt.Sprintf("no providers available for capability %q (considered: %s)",
		e.Capability, strings.Join(e.Candidates, ", "))
}

// Is implements error matching for errors.Is().
func (e *NoProvidersAvailableError) Is(target error) bool {
	return target == ErrNoProvidersAvailable
}

// CircuitOpenError is returned when a call was blocked by an open breaker.
// Callers should treat it like an operation failure for failover purposes,
// but it does not itself count against the breaker's failure counter.
type CircuitOpenError struct {
	// Provider is the provider whose circuit is open.
	Provider string
}

// Error implements the error interface.
func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit breaker open for provider %q", e.Provider)
}

// Is implements error matching for errors.Is().
func (e *CircuitOpenError) Is(target error) bool {
	return target == ErrCircuitOpen
}

// OperationFailedError is returned when the caller-supplied operation failed
// against a provider. The failure is recorded to the health monitor and
// circuit breaker, and the operation is retried against the next candidate
// if budget remains.
type OperationFailedError struct {
	// Provider is the provider the operation failed against.
	Provider string

	// Cause is the underlying operation error.
	Cause error
}

// Error implements the error interface.
func (e *OperationFailedError) Error() string {
	return fmt.Sprintf("operation failed against provider %q: %v", e.Provider, e.Cause)
}

// Is implements error matching for errors.Is().
func (e *OperationFailedError) Is(target error) bool {
	return target == ErrOperationFailed
}

// Unwrap returns the wrapped error for error chain traversal.
func (e *OperationFailedError) Unwrap() error {
	return e.Cause
}

// FailoverExhaustedError is returned when all attempts within the failover
// budget failed. It carries the last observed error.
type FailoverExhaustedError struct {
	// Attempts is the number of operation invocations made.
	Attempts int

	// AttemptedProviders contains the providers that were tried.
	AttemptedProviders []string

	// LastErr is the error from the final attempt.
	LastErr error
}

// Error implements the error interface.
func (e *FailoverExhaustedError) Error() string {
	return fmt.Sprintf("failover exhausted after %d attempts (tried: %s, last error: %v)",
		e.Attempts, strings.Join(e.AttemptedProviders, ", "), e.LastErr)
}

// Is implements error matching for errors.Is().
func (e *FailoverExhaustedError) Is(target error) bool {
	return target == ErrFailoverExhausted
}

// Unwrap returns the wrapped error for error chain traversal.
func (e *FailoverExhaustedError) Unwrap() error {
	return e.LastErr
}

// InvalidStrategyError is returned when the configured selection strategy is
// not recognized.
type InvalidStrategyError struct {
	// Strategy is the invalid strategy name.
	Strategy string

	// AvailableStrategies contains the valid strategy names.
	AvailableStrategies []string
}

// Error implements the error interface.
func (e *InvalidStrategyError) Error() string {
	return fmt.Sprintf("invalid selection strategy %q (available strategies: %s)",
		e.Strategy, strings.Join(e.AvailableStrategies, ", "))
}

// Is implements error matching for errors.Is().
func (e *InvalidStrategyError) Is(target error) bool {
	return target == ErrInvalidStrategy
}
