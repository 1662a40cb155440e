package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/lattice-search/lattice/pkg/registry"
	"github.com/lattice-search/lattice/pkg/routing/strategies"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "routing.strategy").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)
	errs = append(errs, validateHealth(&cfg.Health)...)
	errs = append(errs, validateBreaker(&cfg.Breaker)...)
	errs = append(errs, validateRouting(&cfg.Routing)...)
	errs = append(errs, validateCost(&cfg.Cost)...)
	errs = append(errs, validateProviders(cfg.Providers)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "must not be empty",
		})
	}
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "must not be negative",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "must not be negative",
		})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.shutdown_timeout",
			Message: "must not be negative",
		})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid level %q (must be debug, info, warn, or error)", cfg.Logging.Level),
		})
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid format %q (must be json or text)", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "must start with /",
		})
	}

	return errs
}

func validateHealth(cfg *HealthConfig) []FieldError {
	var errs []FieldError

	if cfg.FailureThreshold < 1 {
		errs = append(errs, FieldError{
			Field:   "health.failure_threshold",
			Message: "must be at least 1",
		})
	}
	if cfg.SuccessThreshold < 1 {
		errs = append(errs, FieldError{
			Field:   "health.success_threshold",
			Message: "must be at least 1",
		})
	}
	if cfg.CheckSchedule != "" {
		if _, err := cron.ParseStandard(cfg.CheckSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "health.check_schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}
	if cfg.CheckTimeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "health.check_timeout",
			Message: "must be positive",
		})
	}
	if cfg.LatencySmoothing <= 0 || cfg.LatencySmoothing > 1 {
		errs = append(errs, FieldError{
			Field:   "health.latency_smoothing",
			Message: "must be in (0, 1]",
		})
	}

	return errs
}

func validateBreaker(cfg *BreakerConfig) []FieldError {
	var errs []FieldError

	if cfg.FailureThreshold < 1 {
		errs = append(errs, FieldError{
			Field:   "breaker.failure_threshold",
			Message: "must be at least 1",
		})
	}
	if cfg.ResetTimeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "breaker.reset_timeout",
			Message: "must be positive",
		})
	}
	if cfg.HalfOpenMaxCalls < 1 {
		errs = append(errs, FieldError{
			Field:   "breaker.half_open_max_calls",
			Message: "must be at least 1",
		})
	}
	if cfg.HalfOpenSuccesses < 1 {
		errs = append(errs, FieldError{
			Field:   "breaker.half_open_successes",
			Message: "must be at least 1",
		})
	}

	switch cfg.Persistence.Backend {
	case "memory":
	case "sqlite":
		if cfg.Persistence.Path == "" {
			errs = append(errs, FieldError{
				Field:   "breaker.persistence.path",
				Message: "required when backend is sqlite",
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "breaker.persistence.backend",
			Message: fmt.Sprintf("invalid backend %q (must be memory or sqlite)", cfg.Persistence.Backend),
		})
	}

	return errs
}

func validateRouting(cfg *RoutingConfig) []FieldError {
	var errs []FieldError

	valid := false
	for _, name := range strategies.AvailableStrategies() {
		if cfg.Strategy == name {
			valid = true
			break
		}
	}
	if !valid {
		errs = append(errs, FieldError{
			Field: "routing.strategy",
			Message: fmt.Sprintf("invalid strategy %q (must be one of: %s)",
				cfg.Strategy, strings.Join(strategies.AvailableStrategies(), ", ")),
		})
	}

	if cfg.MaxAttempts < 1 {
		errs = append(errs, FieldError{
			Field:   "routing.max_attempts",
			Message: "must be at least 1",
		})
	}

	return errs
}

func validateCost(cfg *CostConfig) []FieldError {
	var errs []FieldError

	if cfg.Window <= 0 {
		errs = append(errs, FieldError{
			Field:   "cost.window",
			Message: "must be positive",
		})
	}
	if cfg.BucketSize <= 0 {
		errs = append(errs, FieldError{
			Field:   "cost.bucket_size",
			Message: "must be positive",
		})
	}
	if cfg.BucketSize > cfg.Window && cfg.Window > 0 {
		errs = append(errs, FieldError{
			Field:   "cost.bucket_size",
			Message: "must not exceed cost.window",
		})
	}

	return errs
}

func validateProviders(providers []ProviderConfig) []FieldError {
	var errs []FieldError

	seen := make(map[string]bool, len(providers))
	for i, p := range providers {
		field := func(name string) string {
			return fmt.Sprintf("providers[%d].%s", i, name)
		}

		if p.Name == "" {
			errs = append(errs, FieldError{
				Field:   field("name"),
				Message: "must not be empty",
			})
		} else if seen[p.Name] {
			errs = append(errs, FieldError{
				Field:   field("name"),
				Message: fmt.Sprintf("duplicate provider name %q", p.Name),
			})
		}
		seen[p.Name] = true

		if !registry.Capability(p.Capability).Valid() {
			errs = append(errs, FieldError{
				Field: field("capability"),
				Message: fmt.Sprintf("invalid capability %q (must be one of: %s)",
					p.Capability, capabilityNames()),
			})
		}

		if p.Weight < 0 {
			errs = append(errs, FieldError{
				Field:   field("weight"),
				Message: "must not be negative",
			})
		}

		if p.HealthCheckURL != "" {
			u, err := url.Parse(p.HealthCheckURL)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				errs = append(errs, FieldError{
					Field:   field("health_check_url"),
					Message: "must be a valid http or https URL",
				})
			}
		}
	}

	return errs
}

func capabilityNames() string {
	caps := registry.Capabilities()
	names := make([]string, len(caps))
	for i, c := range caps {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
