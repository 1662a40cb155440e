// Package server provides the admin HTTP server for the routing service.
//
// The server exposes operational endpoints only; it does not carry search or
// embedding traffic:
//
//	/healthz           process liveness
//	/readyz            readiness (at least one provider not unhealthy)
//	/providers/health  per-provider health status
//	/stats             routing statistics snapshot
//	<metrics path>     Prometheus scrape endpoint, when metrics are enabled
//
// The server shuts down gracefully on context cancellation, bounded by the
// configured shutdown timeout.
package server
