// Package registry holds the set of registered backend providers per
// capability (embedding, vector_store, cache).
//
// The registry is a pure lookup table. It records which provider instances
// exist, which capability each serves, and the static selection attributes
// (priority, weight) that strategies consume. It performs no health tracking,
// no circuit breaking, and no selection itself; those concerns live in the
// health, breaker, and routing packages.
//
// A single Registry instance is constructed at the composition root and
// shared by reference across every router and failover manager in the
// process. All methods are safe for concurrent use.
package registry
