package cost

import (
	"sync"
	"time"
)

// Tracker accumulates spend per provider.
//
// Totals are kept per currency and grow monotonically until Reset. No
// normalization across currencies is performed: callers that want cross-
// provider cost comparison must report comparable units.
//
// In addition to all-time totals, the tracker keeps a rolling hourly window
// per provider so that cost-aware selection can bias on recent spend rather
// than lifetime spend.
//
// Tracker is thread-safe. A single instance is constructed at the
// composition root and shared by reference.
type Tracker struct {
	mu sync.RWMutex

	// totals maps provider -> currency -> accumulated amount.
	totals map[string]map[string]float64

	// recent maps provider -> rolling window of spend (currency-blind sum).
	recent map[string]*rollingWindow

	window     time.Duration
	bucketSize time.Duration
}

// NewTracker creates a cost tracker with an hourly recent-spend window.
func NewTracker() *Tracker {
	return NewTrackerWithWindow(time.Hour, time.Minute)
}

// NewTrackerWithWindow creates a cost tracker with a custom recent-spend
// window and bucket granularity.
func NewTrackerWithWindow(window, bucketSize time.Duration) *Tracker {
	if window <= 0 {
		window = time.Hour
	}
	if bucketSize <= 0 || bucketSize > window {
		bucketSize = window / 60
	}

	return &Tracker{
		totals:     make(map[string]map[string]float64),
		recent:     make(map[string]*rollingWindow),
		window:     window,
		bucketSize: bucketSize,
	}
}

// Record accumulates spend for a provider. Negative and zero amounts are
// ignored. Currency defaults to "usd" when empty.
func (t *Tracker) Record(provider string, amount float64, currency string) {
	if provider == "" || amount <= 0 {
		return
	}
	if currency == "" {
		currency = "usd"
	}

	t.mu.Lock()
	byCurrency, ok := t.totals[provider]
	if !ok {
		byCurrency = make(map[string]float64)
		t.totals[provider] = byCurrency
	}
	byCurrency[currency] += amount

	window, ok := t.recent[provider]
	if !ok {
		window = newRollingWindow(t.window, t.bucketSize)
		t.recent[provider] = window
	}
	t.mu.Unlock()

	// Window has its own lock; keep it out of the tracker's critical section.
	window.add(amount)
}

// Total returns the accumulated spend for a provider by currency.
// Returns an empty map for providers with no recorded cost.
func (t *Tracker) Total(provider string) map[string]float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make(map[string]float64)
	for currency, amount := range t.totals[provider] {
		result[currency] = amount
	}
	return result
}

// RecentSpend returns the provider's spend within the rolling window, summed
// across currencies. Implements the strategies.CostReader contract.
func (t *Tracker) RecentSpend(provider string) float64 {
	t.mu.RLock()
	window, ok := t.recent[provider]
	t.mu.RUnlock()

	if !ok {
		return 0
	}
	return window.sum()
}

// Summary returns accumulated spend for every provider by currency.
func (t *Tracker) Summary() map[string]map[string]float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	summary := make(map[string]map[string]float64, len(t.totals))
	for provider, byCurrency := range t.totals {
		cp := make(map[string]float64, len(byCurrency))
		for currency, amount := range byCurrency {
			cp[currency] = amount
		}
		summary[provider] = cp
	}
	return summary
}

// Reset clears all accumulated cost for a provider.
func (t *Tracker) Reset(provider string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.totals, provider)
	if window, ok := t.recent[provider]; ok {
		window.reset()
		delete(t.recent, provider)
	}
}
