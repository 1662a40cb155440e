// Lattice is the provider resilience and routing layer for a semantic
// code-search platform.
//
// It tracks the health, circuit state, and spend of embedding, vector store,
// and cache providers, selects a provider per operation under a configurable
// strategy, and fails over across alternates when a provider misbehaves.
//
// Usage:
//
//	# Start the routing service with default configuration
//	lattice run
//
//	# Start with custom configuration file
//	lattice run --config /path/to/lattice.yaml
//
//	# Validate a configuration file without starting
//	lattice validate --config /path/to/lattice.yaml
//
//	# List configured providers
//	lattice providers --config /path/to/lattice.yaml
//
//	# Show version information
//	lattice version
package main

func main() {
	Execute()
}
