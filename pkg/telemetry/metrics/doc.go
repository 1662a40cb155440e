// Package metrics is the write-only Prometheus observability sink for the
// provider routing layer.
//
// The collector records selections, request outcomes, response times, costs,
// circuit breaker transitions, and health scores. It never affects control
// flow and is never consulted by routing decisions.
//
// Metric names are part of the external contract for dashboards; see the
// Collector documentation for the full list.
package metrics
