// Package telemetry provides observability for the Lattice routing layer.
//
// # Components
//
//   - logging: structured logging built on log/slog
//   - metrics: Prometheus metrics collection
//
// Both components are write-only sinks: they never influence routing or
// failover decisions, and failures in either are swallowed locally.
package telemetry
