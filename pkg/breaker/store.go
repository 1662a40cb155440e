package breaker

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Record is the persisted state for a single provider's circuit.
type Record struct {
	// Provider is the provider this circuit belongs to.
	Provider string

	// State is the circuit state at the time of the save.
	State State

	// ConsecutiveFailures is the failure counter at the time of the save.
	ConsecutiveFailures int

	// OpenedAt is when the circuit last entered the open state.
	OpenedAt time.Time

	// UpdatedAt is when this record was written.
	UpdatedAt time.Time
}

// StateStore persists circuit state across process restarts.
// Implementations must be thread-safe and support concurrent access.
type StateStore interface {
	// Save persists the circuit record for a provider, replacing any
	// existing record.
	Save(ctx context.Context, rec *Record) error

	// Load retrieves the circuit record for a provider.
	// Returns nil if no record exists.
	Load(ctx context.Context, provider string) (*Record, error)

	// LoadAll retrieves all persisted circuit records.
	LoadAll(ctx context.Context) ([]*Record, error)

	// Delete removes the circuit record for a provider. No-op if absent.
	Delete(ctx context.Context, provider string) error

	// Close releases any resources held by the store.
	Close() error
}

// MemoryStore implements StateStore in memory. This is the default store:
// fast, no persistence, all state lost on process exit.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemoryStore creates an in-memory state store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
	}
}

// Save persists the circuit record for a provider.
func (m *MemoryStore) Save(ctx context.Context, rec *Record) error {
	if rec == nil {
		return fmt.Errorf("record cannot be nil")
	}
	if rec.Provider == "" {
		return fmt.Errorf("provider cannot be empty")
	}

	cp := *rec

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[rec.Provider] = &cp
	return nil
}

// Load retrieves the circuit record for a provider.
func (m *MemoryStore) Load(ctx context.Context, provider string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[provider]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

// LoadAll retrieves all persisted circuit records.
func (m *MemoryStore) LoadAll(ctx context.Context) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]*Record, 0, len(m.records))
	for _, rec := range m.records {
		cp := *rec
		records = append(records, &cp)
	}
	return records, nil
}

// Delete removes the circuit record for a provider.
func (m *MemoryStore) Delete(ctx context.Context, provider string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, provider)
	return nil
}

// Close is a no-op for the memory store.
func (m *MemoryStore) Close() error {
	return nil
}
