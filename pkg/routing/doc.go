// Package routing decides, per logical operation, which backend provider
// should serve a request, and drives retries across alternates when a
// provider fails.
//
// # Components
//
// DefaultRouter is the thin façade composing the registry, health monitor,
// circuit breaker, cost tracker, metrics sink, and a selection strategy. It
// exposes the selection and reporting API that application services consume.
//
// FailoverManager repeats selection-and-call across candidates under a
// strict attempt budget, recording failures as it goes. Caller cancellation
// is distinguished from provider failure and never charged against a
// provider's health.
//
// # Error Taxonomy
//
// Callers receive a small closed set of error kinds so they can degrade
// gracefully: ErrNoProvidersAvailable (structural, fail fast),
// ErrCircuitOpen, ErrOperationFailed (handled locally by failover), and
// ErrFailoverExhausted (budget spent). All are matchable with errors.Is and
// carry typed detail structs.
//
// # Concurrency
//
// All types are safe for concurrent use. Selection and reporting suspend
// only on short internal locks; ExecuteWithFailover is the only point that
// awaits arbitrarily long caller-supplied work.
package routing
