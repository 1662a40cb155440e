package routing

import (
	"github.com/lattice-search/lattice/pkg/health"
	"github.com/lattice-search/lattice/pkg/registry"
)

// Strategy is the interface all selection strategies implement.
// This is defined here, not in the strategies package, to avoid import
// cycles: strategies consume the routing types.
//
// Implementations must be thread-safe: they are called concurrently from
// every goroutine performing a selection.
type Strategy interface {
	// Select picks one provider from the candidate list.
	//
	// Candidates are already filtered for exclusion, health, and circuit
	// state, and arrive in registry order for deterministic tie-breaking.
	// Returns ErrNoProvidersAvailable (via a typed error) if candidates is
	// empty.
	Select(pctx *ProviderContext, candidates []string) (string, error)

	// GetName returns the strategy name for logging and statistics.
	GetName() string

	// Reset clears the strategy's internal state. Primarily for tests.
	Reset()
}

// Router is the public selection and reporting API consumed by application
// services (indexing, search, cache layers).
//
// A Router composes the registry, health monitor, circuit breaker, selection
// strategy, and metrics sink. Implementations must be thread-safe; many
// in-flight operations call into the router simultaneously, and no method
// blocks on network I/O.
//
// Example usage:
//
//	provider, err := router.SelectEmbeddingProvider(&routing.ProviderContext{
//	    OperationType:   "embed_batch",
//	    CostSensitivity: 0.8,
//	})
//	if err != nil {
//	    return err
//	}
//
//	err = embed(ctx, provider, texts)
//	if err != nil {
//	    router.ReportFailure(provider, err)
//	    return err
//	}
//	router.ReportSuccess(provider)
//	router.ReportCost(provider, 0.0004, "usd")
type Router interface {
	// SelectEmbeddingProvider selects a provider for the embedding
	// capability.
	SelectEmbeddingProvider(pctx *ProviderContext) (string, error)

	// SelectVectorStoreProvider selects a provider for the vector store
	// capability.
	SelectVectorStoreProvider(pctx *ProviderContext) (string, error)

	// SelectCacheProvider selects a provider for the cache capability.
	SelectCacheProvider(pctx *ProviderContext) (string, error)

	// SelectProvider selects a provider for an arbitrary capability.
	SelectProvider(capability registry.Capability, pctx *ProviderContext) (string, error)

	// ReportSuccess records a successful call outcome for a provider,
	// updating the health monitor, circuit breaker, and metrics.
	ReportSuccess(provider string)

	// ReportFailure records a failed call outcome for a provider,
	// updating the health monitor, circuit breaker, and metrics.
	ReportFailure(provider string, err error)

	// ReportCost records spend for a provider. Cost is reported separately
	// from success because it is known only after a successful call.
	ReportCost(provider string, amount float64, currency string)

	// GetProviderHealth returns the current health status of a provider.
	GetProviderHealth(provider string) health.Status

	// GetAllHealth returns the health status of every tracked provider.
	GetAllHealth() map[string]health.Status

	// GetStats returns a string-keyed snapshot for the admin surface,
	// including total_providers, healthy_providers, per-capability
	// candidates, and a serialized health map.
	GetStats() map[string]any
}
