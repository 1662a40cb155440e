package registry

import (
	"fmt"
	"sort"
	"sync"
)

// Capability identifies a class of interchangeable backend providers.
// Every provider registered with the Registry serves exactly one capability.
type Capability string

const (
	// CapabilityEmbedding covers providers that generate text embeddings.
	CapabilityEmbedding Capability = "embedding"

	// CapabilityVectorStore covers providers that store and search vectors.
	CapabilityVectorStore Capability = "vector_store"

	// CapabilityCache covers providers that cache query and embedding results.
	CapabilityCache Capability = "cache"
)

// Capabilities returns all known capabilities in a stable order.
func Capabilities() []Capability {
	return []Capability{CapabilityEmbedding, CapabilityVectorStore, CapabilityCache}
}

// Valid reports whether the capability is one of the known capabilities.
func (c Capability) Valid() bool {
	switch c {
	case CapabilityEmbedding, CapabilityVectorStore, CapabilityCache:
		return true
	}
	return false
}

// Descriptor describes a single registered provider instance.
// The Registry is a pure lookup table: descriptors carry the static
// attributes that selection strategies consume (priority, weight), but the
// Registry itself has no routing behavior.
type Descriptor struct {
	// Name is the opaque provider identifier (e.g., "openai-embed-1").
	Name string

	// Capability is the provider class this instance serves.
	Capability Capability

	// Priority is the explicit selection priority (lower = more preferred).
	// Consumed by the priority-based strategy.
	Priority int

	// Weight is the relative traffic weight for round-robin selection.
	// Zero or negative weight excludes the provider from weighted rotation.
	Weight int

	// HealthCheckURL is an optional endpoint for the default HTTP health probe.
	HealthCheckURL string
}

// Registry holds the set of registered providers per capability.
//
// Registration order is preserved: Candidates returns providers in the order
// they were registered, which strategies use for deterministic tie-breaking.
//
// Registry is thread-safe. It is constructed once at the composition root and
// shared by reference across all routers and failover managers.
type Registry struct {
	mu sync.RWMutex

	// descriptors maps provider name to its descriptor.
	descriptors map[string]Descriptor

	// order maps capability to provider names in registration order.
	order map[Capability][]string
}

// New creates an empty provider registry.
func New() *Registry {
	return &Registry{
		descriptors: make(map[string]Descriptor),
		order:       make(map[Capability][]string),
	}
}

// Register adds a provider descriptor to the registry.
// Registering an existing name updates its descriptor in place and keeps its
// original position in the candidate order.
func (r *Registry) Register(d Descriptor) error {
	if d.Name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}
	if !d.Capability.Valid() {
		return fmt.Errorf("unknown capability %q for provider %q", d.Capability, d.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.descriptors[d.Name]
	if ok && existing.Capability != d.Capability {
		return fmt.Errorf("provider %q already registered with capability %q", d.Name, existing.Capability)
	}

	r.descriptors[d.Name] = d
	if !ok {
		r.order[d.Capability] = append(r.order[d.Capability], d.Name)
	}

	return nil
}

// Unregister removes a provider from the registry.
// It is a no-op if the provider is not registered.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.descriptors[name]
	if !ok {
		return
	}

	delete(r.descriptors, name)

	names := r.order[d.Capability]
	for i, n := range names {
		if n == name {
			r.order[d.Capability] = append(names[:i], names[i+1:]...)
			break
		}
	}
}

// Candidates returns the names of all providers registered for the capability,
// in registration order. Returns an empty slice if none are registered.
func (r *Registry) Candidates(capability Capability) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := r.order[capability]
	result := make([]string, len(names))
	copy(result, names)
	return result
}

// Descriptor returns the descriptor for a provider by name.
// The second return value reports whether the provider is registered.
func (r *Registry) Descriptor(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.descriptors[name]
	return d, ok
}

// AllProviders returns the names of all registered providers across all
// capabilities, sorted for stable output.
func (r *Registry) AllProviders() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.descriptors))
	for name := range r.descriptors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the total number of registered providers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.descriptors)
}

// Priorities returns a map of provider name to configured priority.
// Consumed by the priority-based selection strategy at construction time
// and on configuration reload.
func (r *Registry) Priorities() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	priorities := make(map[string]int, len(r.descriptors))
	for name, d := range r.descriptors {
		priorities[name] = d.Priority
	}
	return priorities
}

// Weights returns a map of provider name to configured round-robin weight.
func (r *Registry) Weights() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	weights := make(map[string]int, len(r.descriptors))
	for name, d := range r.descriptors {
		weights[name] = d.Weight
	}
	return weights
}
