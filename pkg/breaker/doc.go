// Package breaker implements a per-provider circuit breaker that isolates
// providers exhibiting failure bursts.
//
// # State Machine
//
// Each provider has an independent Closed -> Open -> HalfOpen machine.
// A closed circuit trips open after FailureThreshold consecutive failures.
// After ResetTimeout the circuit admits HalfOpenMaxCalls trial calls; trial
// success closes it, trial failure reopens it. Circuits cycle for the life
// of the provider.
//
// # Usage
//
//	b := breaker.New(breaker.DefaultConfig(), breaker.NewMemoryStore())
//	if !b.Allow("openai-embed-1") {
//	    // circuit open, skip this provider
//	}
//	err := callProvider(...)
//	b.RecordOutcome("openai-embed-1", err == nil)
//
// # Persistence
//
// State changes are saved best-effort through a pluggable StateStore
// (in-memory default, SQLite optional) so a restarted process does not
// immediately re-admit a provider that was open at shutdown. Persistence is
// asynchronous: it never blocks the call path, and a failed save is logged
// while the in-memory state remains authoritative.
package breaker
