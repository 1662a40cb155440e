package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention LATTICE_SECTION_FIELD (e.g., LATTICE_ROUTING_STRATEGY) and
// always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format LATTICE_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("LATTICE_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("LATTICE_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("LATTICE_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("LATTICE_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}

	// Telemetry overrides
	if val := os.Getenv("LATTICE_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("LATTICE_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("LATTICE_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("LATTICE_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}

	// Health overrides
	if val := os.Getenv("LATTICE_HEALTH_FAILURE_THRESHOLD"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Health.FailureThreshold = i
		}
	}
	if val := os.Getenv("LATTICE_HEALTH_SUCCESS_THRESHOLD"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Health.SuccessThreshold = i
		}
	}
	if val := os.Getenv("LATTICE_HEALTH_CHECK_SCHEDULE"); val != "" {
		cfg.Health.CheckSchedule = val
	}
	if val := os.Getenv("LATTICE_HEALTH_CHECK_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Health.CheckTimeout = d
		}
	}

	// Breaker overrides
	if val := os.Getenv("LATTICE_BREAKER_FAILURE_THRESHOLD"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Breaker.FailureThreshold = i
		}
	}
	if val := os.Getenv("LATTICE_BREAKER_RESET_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Breaker.ResetTimeout = d
		}
	}
	if val := os.Getenv("LATTICE_BREAKER_PERSISTENCE_BACKEND"); val != "" {
		cfg.Breaker.Persistence.Backend = val
	}
	if val := os.Getenv("LATTICE_BREAKER_PERSISTENCE_PATH"); val != "" {
		cfg.Breaker.Persistence.Path = val
	}

	// Routing overrides
	if val := os.Getenv("LATTICE_ROUTING_STRATEGY"); val != "" {
		cfg.Routing.Strategy = val
	}
	if val := os.Getenv("LATTICE_ROUTING_MAX_ATTEMPTS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Routing.MaxAttempts = i
		}
	}

	// Cost overrides
	if val := os.Getenv("LATTICE_COST_WINDOW"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Cost.Window = d
		}
	}

	// Provider overrides, keyed by declared provider name
	for i := range cfg.Providers {
		applyProviderEnvOverrides(&cfg.Providers[i])
	}
}

// applyProviderEnvOverrides applies environment variable overrides for one
// declared provider. Provider environment variables follow the format
// LATTICE_PROVIDERS_<NAME>_<FIELD> where NAME is the uppercase provider name.
func applyProviderEnvOverrides(p *ProviderConfig) {
	prefix := fmt.Sprintf("LATTICE_PROVIDERS_%s_", strings.ToUpper(p.Name))

	if val := os.Getenv(prefix + "PRIORITY"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			p.Priority = i
		}
	}
	if val := os.Getenv(prefix + "WEIGHT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			p.Weight = i
		}
	}
	if val := os.Getenv(prefix + "HEALTH_CHECK_URL"); val != "" {
		p.HealthCheckURL = val
	}
}
