// Package config defines the Lattice routing service configuration, loaded
// from YAML with defaults, LATTICE_* environment variable overrides, and
// validation.
//
// # Loading
//
// LoadConfig reads and validates a YAML file. LoadConfigWithEnvOverrides
// additionally applies environment overrides in the format
// LATTICE_SECTION_FIELD (e.g., LATTICE_ROUTING_STRATEGY,
// LATTICE_BREAKER_RESET_TIMEOUT). Per-provider overrides use
// LATTICE_PROVIDERS_<NAME>_<FIELD>.
//
// # Hot Reload
//
// Watcher watches the configuration file and re-runs the full load sequence
// on each change, invoking a callback with the new configuration. A reload
// that fails to parse or validate is logged and discarded; the running
// configuration is never replaced with a broken one.
package config
