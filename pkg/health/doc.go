// Package health maintains per-provider health status from reported check
// results and operation outcomes.
//
// # Status Model
//
// Each provider is Healthy, Degraded, or Unhealthy. Providers with no
// recorded evidence are Unhealthy: the monitor fails closed, and absence of
// data is meaningful rather than an error.
//
// Transitions step one level at a time in response to evidence. By default
// three consecutive failures step a provider down one level and a single
// success steps it back up; both thresholds are configurable.
//
// # Probing
//
// CheckProvider drives an injected Checker so that this package never speaks
// provider-specific protocols. HTTPChecker is the default implementation,
// hitting each provider's own lightweight health endpoint. Scheduler runs
// periodic probe sweeps on a cron schedule.
//
// # Thread Safety
//
// All Monitor methods are safe for concurrent use. Status transitions are
// linearizable per provider; there is no ordering guarantee across different
// providers.
package health
