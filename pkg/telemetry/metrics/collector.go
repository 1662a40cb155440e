package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config contains configuration for the metrics collector.
type Config struct {
	// Enabled controls whether metrics are recorded. When false, all
	// recording methods are no-ops.
	Enabled bool

	// ResponseTimeBuckets are the histogram buckets for provider response
	// times in seconds. Defaults cover 10ms - 30s.
	ResponseTimeBuckets []float64
}

// Collector is the write-only observability sink for the provider routing
// layer. It never affects control flow: recording methods have no return
// values and swallow nothing because nothing can fail.
//
// The metric names below are part of the external contract for dashboards
// and are reproduced exactly:
//
//   - provider_selections_total{provider,strategy}
//   - provider_response_time_seconds{provider,operation}
//   - provider_requests_total{provider,operation,status}
//   - provider_errors_total{provider,error_type}
//   - provider_cost_total{provider,currency}
//   - provider_active_connections{provider}
//   - circuit_breaker_state_changes_total{provider,state}
//   - provider_health_score{provider}
type Collector struct {
	config   Config
	registry *prometheus.Registry

	selections        *prometheus.CounterVec
	responseTime      *prometheus.HistogramVec
	requests          *prometheus.CounterVec
	errors            *prometheus.CounterVec
	cost              *prometheus.CounterVec
	activeConnections *prometheus.GaugeVec
	stateChanges      *prometheus.CounterVec
	healthScore       *prometheus.GaugeVec
}

// NewCollector creates and registers the provider metrics with the given
// registry. If registry is nil, a new registry is created.
func NewCollector(cfg Config, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if len(cfg.ResponseTimeBuckets) == 0 {
		cfg.ResponseTimeBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0}
	}

	c := &Collector{
		config:   cfg,
		registry: registry,

		selections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "provider_selections_total",
				Help: "Total number of provider selections by strategy",
			},
			[]string{"provider", "strategy"},
		),

		responseTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "provider_response_time_seconds",
				Help:    "Provider operation response time in seconds",
				Buckets: cfg.ResponseTimeBuckets,
			},
			[]string{"provider", "operation"},
		),

		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "provider_requests_total",
				Help: "Total number of requests to each provider by operation and status",
			},
			[]string{"provider", "operation", "status"},
		),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "provider_errors_total",
				Help: "Total number of provider errors by type",
			},
			[]string{"provider", "error_type"},
		),

		cost: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "provider_cost_total",
				Help: "Total accumulated provider cost by currency",
			},
			[]string{"provider", "currency"},
		),

		activeConnections: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "provider_active_connections",
				Help: "Number of in-flight operations per provider",
			},
			[]string{"provider"},
		),

		stateChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "circuit_breaker_state_changes_total",
				Help: "Total number of circuit breaker state transitions by resulting state",
			},
			[]string{"provider", "state"},
		),

		healthScore: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "provider_health_score",
				Help: "Provider health score (1.0=healthy, 0.5=degraded, 0.0=unhealthy)",
			},
			[]string{"provider"},
		),
	}

	registry.MustRegister(
		c.selections,
		c.responseTime,
		c.requests,
		c.errors,
		c.cost,
		c.activeConnections,
		c.stateChanges,
		c.healthScore,
	)

	return c
}

// RecordSelection records a provider selection made by a strategy.
func (c *Collector) RecordSelection(provider, strategy string) {
	if !c.config.Enabled {
		return
	}
	c.selections.WithLabelValues(provider, strategy).Inc()
}

// RecordResponseTime records the duration of a provider operation.
func (c *Collector) RecordResponseTime(provider, operation string, d time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.responseTime.WithLabelValues(provider, operation).Observe(d.Seconds())
}

// RecordRequest records a completed request to a provider.
// Status is "success" or "failure".
func (c *Collector) RecordRequest(provider, operation, status string) {
	if !c.config.Enabled {
		return
	}
	c.requests.WithLabelValues(provider, operation, status).Inc()
}

// RecordError records a provider error.
//
// Common error types: "timeout", "circuit_open", "operation_failed",
// "no_providers".
func (c *Collector) RecordError(provider, errorType string) {
	if !c.config.Enabled {
		return
	}
	c.errors.WithLabelValues(provider, errorType).Inc()
}

// RecordCost adds spend to the provider cost counter.
func (c *Collector) RecordCost(provider, currency string, amount float64) {
	if !c.config.Enabled || amount <= 0 {
		return
	}
	c.cost.WithLabelValues(provider, currency).Add(amount)
}

// IncActiveConnections increments the in-flight operation gauge.
func (c *Collector) IncActiveConnections(provider string) {
	if !c.config.Enabled {
		return
	}
	c.activeConnections.WithLabelValues(provider).Inc()
}

// DecActiveConnections decrements the in-flight operation gauge.
func (c *Collector) DecActiveConnections(provider string) {
	if !c.config.Enabled {
		return
	}
	c.activeConnections.WithLabelValues(provider).Dec()
}

// RecordStateChange records a circuit breaker transition into a state.
func (c *Collector) RecordStateChange(provider, state string) {
	if !c.config.Enabled {
		return
	}
	c.stateChanges.WithLabelValues(provider, state).Inc()
}

// SetHealthScore updates the provider health score gauge.
func (c *Collector) SetHealthScore(provider string, score float64) {
	if !c.config.Enabled {
		return
	}
	c.healthScore.WithLabelValues(provider).Set(score)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
