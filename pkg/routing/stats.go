package routing

import (
	"sync"
	"sync/atomic"
	"time"
)

// AtomicRouterStats implements thread-safe routing statistics using atomic
// operations. All counters are updated atomically for lock-free performance
// on the selection path.
type AtomicRouterStats struct {
	totalSelections atomic.Int64

	// selectionsPerProvider tracks selections per provider.
	selectionsPerProvider sync.Map // map[string]*atomic.Int64

	// strategyUseCount tracks how many times each strategy made the
	// selection.
	strategyUseCount sync.Map // map[string]*atomic.Int64

	healthFilteredCount  atomic.Int64
	circuitFilteredCount atomic.Int64
	errors               atomic.Int64

	// mu protects lastResetTime.
	mu            sync.RWMutex
	lastResetTime time.Time
}

// NewAtomicRouterStats creates a new atomic routing statistics tracker.
func NewAtomicRouterStats() *AtomicRouterStats {
	return &AtomicRouterStats{
		lastResetTime: time.Now(),
	}
}

// IncrementTotal increments the total selection counter.
func (s *AtomicRouterStats) IncrementTotal() {
	s.totalSelections.Add(1)
}

// IncrementProvider increments the counter for a specific provider.
func (s *AtomicRouterStats) IncrementProvider(provider string) {
	val, _ := s.selectionsPerProvider.LoadOrStore(provider, &atomic.Int64{})
	val.(*atomic.Int64).Add(1)
}

// IncrementStrategy increments the counter for a specific strategy.
func (s *AtomicRouterStats) IncrementStrategy(strategy string) {
	val, _ := s.strategyUseCount.LoadOrStore(strategy, &atomic.Int64{})
	val.(*atomic.Int64).Add(1)
}

// IncrementHealthFiltered increments the health filtered counter.
func (s *AtomicRouterStats) IncrementHealthFiltered() {
	s.healthFilteredCount.Add(1)
}

// IncrementCircuitFiltered increments the circuit filtered counter.
func (s *AtomicRouterStats) IncrementCircuitFiltered() {
	s.circuitFilteredCount.Add(1)
}

// IncrementErrors increments the error counter.
func (s *AtomicRouterStats) IncrementErrors() {
	s.errors.Add(1)
}

// Snapshot returns a point-in-time snapshot of the statistics.
// The returned RouterStats is safe to read without locks.
func (s *AtomicRouterStats) Snapshot() *RouterStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	perProvider := make(map[string]int64)
	s.selectionsPerProvider.Range(func(key, value any) bool {
		perProvider[key.(string)] = value.(*atomic.Int64).Load()
		return true
	})

	perStrategy := make(map[string]int64)
	s.strategyUseCount.Range(func(key, value any) bool {
		perStrategy[key.(string)] = value.(*atomic.Int64).Load()
		return true
	})

	return &RouterStats{
		TotalSelections:       s.totalSelections.Load(),
		SelectionsPerProvider: perProvider,
		StrategyUseCount:      perStrategy,
		HealthFilteredCount:   s.healthFilteredCount.Load(),
		CircuitFilteredCount:  s.circuitFilteredCount.Load(),
		Errors:                s.errors.Load(),
		LastResetTime:         s.lastResetTime,
	}
}

// Reset resets all statistics to zero.
func (s *AtomicRouterStats) Reset() {
	s.totalSelections.Store(0)
	s.healthFilteredCount.Store(0)
	s.circuitFilteredCount.Store(0)
	s.errors.Store(0)

	s.selectionsPerProvider.Range(func(key, value any) bool {
		s.selectionsPerProvider.Delete(key)
		return true
	})
	s.strategyUseCount.Range(func(key, value any) bool {
		s.strategyUseCount.Delete(key)
		return true
	})

	s.mu.Lock()
	s.lastResetTime = time.Now()
	s.mu.Unlock()
}
