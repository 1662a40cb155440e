package config

import "time"

// Config is the root configuration for the Lattice routing service.
// It is loaded from a YAML file, has defaults applied, may be overridden by
// LATTICE_* environment variables, and is validated before use.
type Config struct {
	// Server configures the HTTP admin surface (metrics, health, stats).
	Server ServerConfig `yaml:"server"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Health configures provider health monitoring.
	Health HealthConfig `yaml:"health"`

	// Breaker configures per-provider circuit breakers.
	Breaker BreakerConfig `yaml:"breaker"`

	// Routing configures provider selection and failover.
	Routing RoutingConfig `yaml:"routing"`

	// Cost configures spend tracking.
	Cost CostConfig `yaml:"cost"`

	// Providers declares the backend providers available for routing.
	Providers []ProviderConfig `yaml:"providers"`
}

// ServerConfig configures the admin HTTP server.
type ServerConfig struct {
	// ListenAddress is the host:port the admin server binds to.
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout bounds reading a request including the body.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout bounds writing a response.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown on termination.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// TelemetryConfig configures observability.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is one of: debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is one of: json, text.
	Format string `yaml:"format"`
}

// MetricsConfig configures Prometheus metrics exposure.
type MetricsConfig struct {
	// Enabled toggles metric collection and the scrape endpoint.
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path the scrape endpoint is served on.
	Path string `yaml:"path"`
}

// HealthConfig configures the health monitor and its probe scheduler.
type HealthConfig struct {
	// FailureThreshold is the number of consecutive failures that steps a
	// provider's status down one level.
	FailureThreshold int `yaml:"failure_threshold"`

	// SuccessThreshold is the number of consecutive successes that steps a
	// provider's status up one level.
	SuccessThreshold int `yaml:"success_threshold"`

	// CheckSchedule is a cron expression for background health probes.
	// Empty disables background probing.
	CheckSchedule string `yaml:"check_schedule"`

	// CheckTimeout bounds a single health probe.
	CheckTimeout time.Duration `yaml:"check_timeout"`

	// LatencySmoothing is the EWMA factor applied to observed response
	// times, in (0, 1].
	LatencySmoothing float64 `yaml:"latency_smoothing"`
}

// BreakerConfig configures per-provider circuit breakers.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens a
	// circuit.
	FailureThreshold int `yaml:"failure_threshold"`

	// ResetTimeout is how long an open circuit waits before admitting a
	// half-open trial call.
	ResetTimeout time.Duration `yaml:"reset_timeout"`

	// HalfOpenMaxCalls is the number of concurrent trial calls admitted
	// while half-open.
	HalfOpenMaxCalls int `yaml:"half_open_max_calls"`

	// HalfOpenSuccesses is the number of trial successes required to close
	// a half-open circuit.
	HalfOpenSuccesses int `yaml:"half_open_successes"`

	// Persistence configures circuit state persistence across restarts.
	Persistence PersistenceConfig `yaml:"persistence"`
}

// PersistenceConfig configures the circuit state store.
type PersistenceConfig struct {
	// Backend is one of: memory, sqlite.
	Backend string `yaml:"backend"`

	// Path is the SQLite database file path. Required when backend is
	// sqlite.
	Path string `yaml:"path"`
}

// RoutingConfig configures provider selection.
type RoutingConfig struct {
	// Strategy is one of: priority, round_robin, contextual.
	Strategy string `yaml:"strategy"`

	// MaxAttempts is the default failover attempt budget per operation.
	MaxAttempts int `yaml:"max_attempts"`
}

// CostConfig configures spend tracking.
type CostConfig struct {
	// Window is the rolling window over which recent spend is summed.
	Window time.Duration `yaml:"window"`

	// BucketSize is the granularity of the rolling window.
	BucketSize time.Duration `yaml:"bucket_size"`
}

// ProviderConfig declares one backend provider.
type ProviderConfig struct {
	// Name uniquely identifies the provider.
	Name string `yaml:"name"`

	// Capability is the operation family the provider serves: embedding,
	// vector_store, or cache.
	Capability string `yaml:"capability"`

	// Priority orders the provider for priority selection (lower = more
	// preferred).
	Priority int `yaml:"priority"`

	// Weight is the provider's round-robin traffic weight.
	Weight int `yaml:"weight"`

	// HealthCheckURL is probed by the background health scheduler.
	// Empty means the provider has no HTTP probe and fails health checks.
	HealthCheckURL string `yaml:"health_check_url"`
}
