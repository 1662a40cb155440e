package breaker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// State is the circuit breaker state for a single provider.
type State string

const (
	// StateClosed passes calls through normally.
	StateClosed State = "closed"

	// StateOpen rejects calls immediately.
	StateOpen State = "open"

	// StateHalfOpen admits a bounded number of trial calls after the reset
	// timeout has elapsed.
	StateHalfOpen State = "half_open"
)

// Config contains the circuit breaker tuning parameters.
type Config struct {
	// FailureThreshold is the number of consecutive failures that trips a
	// closed circuit open. Default: 3.
	FailureThreshold int

	// ResetTimeout is how long an open circuit waits before admitting trial
	// calls. Default: 30s.
	ResetTimeout time.Duration

	// HalfOpenMaxCalls is the number of trial calls admitted while half
	// open. Default: 1.
	HalfOpenMaxCalls int

	// HalfOpenSuccesses is the number of trial successes required to close
	// the circuit. Default: 1.
	HalfOpenSuccesses int

	// PersistTimeout bounds each best-effort state persist. Default: 2s.
	PersistTimeout time.Duration
}

// DefaultConfig returns the production breaker profile.
func DefaultConfig() Config {
	return Config{
		FailureThreshold:  3,
		ResetTimeout:      30 * time.Second,
		HalfOpenMaxCalls:  1,
		HalfOpenSuccesses: 1,
		PersistTimeout:    2 * time.Second,
	}
}

// circuit is the state machine for a single provider.
type circuit struct {
	state               State
	consecutiveFailures int
	openedAt            time.Time
	halfOpenCalls       int
	halfOpenSuccesses   int
}

// StateChangeFunc is invoked after a circuit transitions to a new state.
// Used to feed the circuit_breaker_state_changes_total metric. The callback
// runs outside the breaker's lock and must not call back into the breaker.
type StateChangeFunc func(provider string, state State)

// Breaker tracks a Closed/Open/HalfOpen state machine per provider.
//
// Allow must be consulted before attempting a provider call; RecordOutcome
// updates the machine afterward. Circuits start Closed and cycle for the life
// of the provider; there is no terminal state.
//
// State changes are persisted best-effort through the configured StateStore
// so that a restarted process does not immediately re-admit a provider that
// was open at shutdown. Persistence is asynchronous and never blocks the call
// path; failures are logged and in-memory state remains authoritative.
type Breaker struct {
	config Config
	store  StateStore
	logger *slog.Logger

	mu       sync.Mutex
	circuits map[string]*circuit

	onStateChange StateChangeFunc

	// now is replaceable for tests.
	now func() time.Time
}

// New creates a circuit breaker. The store may be nil to disable persistence.
func New(config Config, store StateStore) *Breaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 3
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}
	if config.HalfOpenMaxCalls <= 0 {
		config.HalfOpenMaxCalls = 1
	}
	if config.HalfOpenSuccesses <= 0 {
		config.HalfOpenSuccesses = 1
	}
	if config.PersistTimeout <= 0 {
		config.PersistTimeout = 2 * time.Second
	}

	return &Breaker{
		config:   config,
		store:    store,
		logger:   slog.Default().With("component", "breaker"),
		circuits: make(map[string]*circuit),
		now:      time.Now,
	}
}

// OnStateChange registers a callback invoked after every state transition.
// Must be called before the breaker is shared across goroutines.
func (b *Breaker) OnStateChange(fn StateChangeFunc) {
	b.onStateChange = fn
}

// Restore loads persisted circuit state from the store. Providers that were
// open at shutdown come back open with their original open timestamp, so the
// reset timeout continues rather than restarting. Missing or failed loads
// leave circuits closed.
func (b *Breaker) Restore(ctx context.Context) error {
	if b.store == nil {
		return nil
	}

	records, err := b.store.LoadAll(ctx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, rec := range records {
		if rec == nil || rec.Provider == "" {
			continue
		}
		c := &circuit{
			state:               rec.State,
			consecutiveFailures: rec.ConsecutiveFailures,
			openedAt:            rec.OpenedAt,
		}
		// Half-open trial bookkeeping is not persisted; a restored
		// half-open circuit starts its trial window fresh.
		if c.state == StateHalfOpen {
			c.state = StateOpen
		}
		b.circuits[rec.Provider] = c
	}

	b.logger.Info("restored circuit breaker state", "circuits", len(records))
	return nil
}

// Allow reports whether a call to the provider is currently permitted.
//
// Closed circuits always permit. Open circuits reject until ResetTimeout has
// elapsed, then transition to half open and admit up to HalfOpenMaxCalls
// trial calls. Each permitted half-open call consumes one trial slot.
func (b *Breaker) Allow(provider string) bool {
	b.mu.Lock()

	c, ok := b.circuits[provider]
	if !ok {
		b.mu.Unlock()
		return true
	}

	switch c.state {
	case StateClosed:
		b.mu.Unlock()
		return true

	case StateOpen:
		if b.now().Sub(c.openedAt) < b.config.ResetTimeout {
			b.mu.Unlock()
			return false
		}
		// Reset timeout elapsed: admit a trial call.
		b.transitionLocked(provider, c, StateHalfOpen)
		c.halfOpenCalls = 1
		c.halfOpenSuccesses = 0
		b.mu.Unlock()
		return true

	case StateHalfOpen:
		if c.halfOpenCalls < b.config.HalfOpenMaxCalls {
			c.halfOpenCalls++
			b.mu.Unlock()
			return true
		}
		b.mu.Unlock()
		return false
	}

	b.mu.Unlock()
	return true
}

// RecordOutcome updates the provider's circuit from a call outcome.
//
// In the closed state, FailureThreshold consecutive failures trip the circuit
// open. In the half-open state, HalfOpenSuccesses trial successes close the
// circuit and any trial failure reopens it. Success in the closed state
// resets the consecutive-failure counter.
func (b *Breaker) RecordOutcome(provider string, success bool) {
	b.mu.Lock()

	c, ok := b.circuits[provider]
	if !ok {
		c = &circuit{state: StateClosed}
		b.circuits[provider] = c
	}

	switch c.state {
	case StateClosed:
		if success {
			c.consecutiveFailures = 0
		} else {
			c.consecutiveFailures++
			if c.consecutiveFailures >= b.config.FailureThreshold {
				c.openedAt = b.now()
				b.transitionLocked(provider, c, StateOpen)
			}
		}

	case StateHalfOpen:
		if success {
			c.halfOpenSuccesses++
			if c.halfOpenSuccesses >= b.config.HalfOpenSuccesses {
				c.consecutiveFailures = 0
				c.halfOpenCalls = 0
				c.halfOpenSuccesses = 0
				b.transitionLocked(provider, c, StateClosed)
			}
		} else {
			c.openedAt = b.now()
			c.halfOpenCalls = 0
			c.halfOpenSuccesses = 0
			b.transitionLocked(provider, c, StateOpen)
		}

	case StateOpen:
		// Outcomes reported while open (e.g., from calls that started
		// before the trip) do not move the machine.
	}

	b.mu.Unlock()
}

// State returns the current circuit state for a provider.
// Providers with no recorded outcomes are Closed.
func (b *Breaker) State(provider string) State {
	b.mu.Lock()
	defer b.mu.Unlock()

	if c, ok := b.circuits[provider]; ok {
		return c.state
	}
	return StateClosed
}

// Snapshot returns the current state of every tracked circuit.
func (b *Breaker) Snapshot() map[string]State {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap := make(map[string]State, len(b.circuits))
	for provider, c := range b.circuits {
		snap[provider] = c.state
	}
	return snap
}

// transitionLocked moves a circuit to a new state, logs the transition, fires
// the state-change callback, and schedules a best-effort persist. Caller
// must hold b.mu.
func (b *Breaker) transitionLocked(provider string, c *circuit, to State) {
	from := c.state
	if from == to {
		return
	}
	c.state = to

	b.logger.Info("circuit state changed",
		"provider", provider,
		"from", string(from),
		"to", string(to),
		"consecutive_failures", c.consecutiveFailures,
	)

	rec := &Record{
		Provider:            provider,
		State:               to,
		ConsecutiveFailures: c.consecutiveFailures,
		OpenedAt:            c.openedAt,
		UpdatedAt:           b.now(),
	}

	if b.onStateChange != nil {
		go b.onStateChange(provider, to)
	}

	if b.store != nil {
		go b.persist(rec)
	}
}

// persist saves a state record to the store. Persistence failures are logged
// and never propagated; in-memory state stays authoritative.
func (b *Breaker) persist(rec *Record) {
	ctx, cancel := context.WithTimeout(context.Background(), b.config.PersistTimeout)
	defer cancel()

	if err := b.store.Save(ctx, rec); err != nil {
		b.logger.Warn("failed to persist circuit state",
			"provider", rec.Provider,
			"state", string(rec.State),
			"error", err,
		)
	}
}
