package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8480"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Telemetry defaults
	DefaultLoggingLevel   = "info"
	DefaultLoggingFormat  = "json"
	DefaultMetricsEnabled = true
	DefaultMetricsPath    = "/metrics"

	// Health defaults
	DefaultHealthFailureThreshold = 3
	DefaultHealthSuccessThreshold = 1
	DefaultHealthCheckSchedule    = "@every 30s"
	DefaultHealthCheckTimeout     = 5 * time.Second
	DefaultLatencySmoothing       = 0.3

	// Breaker defaults
	DefaultBreakerFailureThreshold  = 3
	DefaultBreakerResetTimeout      = 30 * time.Second
	DefaultBreakerHalfOpenMaxCalls  = 1
	DefaultBreakerHalfOpenSuccesses = 1
	DefaultPersistenceBackend       = "memory"

	// Routing defaults
	DefaultRoutingStrategy    = "priority"
	DefaultRoutingMaxAttempts = 3

	// Cost defaults
	DefaultCostWindow     = time.Hour
	DefaultCostBucketSize = time.Minute

	// Provider defaults
	DefaultProviderWeight = 1
)

// ApplyDefaults fills zero-valued fields with default values.
// Explicitly configured values are never overwritten.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}

	if cfg.Health.FailureThreshold == 0 {
		cfg.Health.FailureThreshold = DefaultHealthFailureThreshold
	}
	if cfg.Health.SuccessThreshold == 0 {
		cfg.Health.SuccessThreshold = DefaultHealthSuccessThreshold
	}
	if cfg.Health.CheckSchedule == "" {
		cfg.Health.CheckSchedule = DefaultHealthCheckSchedule
	}
	if cfg.Health.CheckTimeout == 0 {
		cfg.Health.CheckTimeout = DefaultHealthCheckTimeout
	}
	if cfg.Health.LatencySmoothing == 0 {
		cfg.Health.LatencySmoothing = DefaultLatencySmoothing
	}

	if cfg.Breaker.FailureThreshold == 0 {
		cfg.Breaker.FailureThreshold = DefaultBreakerFailureThreshold
	}
	if cfg.Breaker.ResetTimeout == 0 {
		cfg.Breaker.ResetTimeout = DefaultBreakerResetTimeout
	}
	if cfg.Breaker.HalfOpenMaxCalls == 0 {
		cfg.Breaker.HalfOpenMaxCalls = DefaultBreakerHalfOpenMaxCalls
	}
	if cfg.Breaker.HalfOpenSuccesses == 0 {
		cfg.Breaker.HalfOpenSuccesses = DefaultBreakerHalfOpenSuccesses
	}
	if cfg.Breaker.Persistence.Backend == "" {
		cfg.Breaker.Persistence.Backend = DefaultPersistenceBackend
	}

	if cfg.Routing.Strategy == "" {
		cfg.Routing.Strategy = DefaultRoutingStrategy
	}
	if cfg.Routing.MaxAttempts == 0 {
		cfg.Routing.MaxAttempts = DefaultRoutingMaxAttempts
	}

	if cfg.Cost.Window == 0 {
		cfg.Cost.Window = DefaultCostWindow
	}
	if cfg.Cost.BucketSize == 0 {
		cfg.Cost.BucketSize = DefaultCostBucketSize
	}

	for i := range cfg.Providers {
		if cfg.Providers[i].Weight == 0 {
			cfg.Providers[i].Weight = DefaultProviderWeight
		}
	}
}
