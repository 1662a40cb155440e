package strategies

import (
	"errors"
	"sync"
	"testing"

	"github.com/lattice-search/lattice/pkg/routing"
)

func TestNewRoundRobinStrategy(t *testing.T) {
	tests := []struct {
		name    string
		weights map[string]int
	}{
		{
			name:    "with weights",
			weights: map[string]int{"openai": 2, "voyage": 1},
		},
		{
			name:    "with nil weights",
			weights: nil,
		},
		{
			name:    "with empty weights",
			weights: map[string]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategy := NewRoundRobinStrategy(tt.weights)
			if strategy == nil {
				t.Fatal("NewRoundRobinStrategy() returned nil")
			}
			if strategy.weights == nil {
				t.Error("strategy.weights should not be nil")
			}
			if got := strategy.GetName(); got != NameRoundRobin {
				t.Errorf("GetName() = %q, want %q", got, NameRoundRobin)
			}
		})
	}
}

func TestRoundRobinStrategySelectEmpty(t *testing.T) {
	strategy := NewRoundRobinStrategy(nil)

	_, err := strategy.Select(nil, nil)
	if err == nil {
		t.Fatal("Select() expected error, got nil")
	}
	if !errors.Is(err, routing.ErrNoProvidersAvailable) {
		t.Errorf("Select() error = %v, want ErrNoProvidersAvailable", err)
	}
}

func TestRoundRobinStrategyEvenDistribution(t *testing.T) {
	// N sequential selections over M candidates must visit each candidate
	// either floor(N/M) or ceil(N/M) times.
	strategy := NewRoundRobinStrategy(nil)
	candidates := []string{"openai", "voyage", "local"}

	const n = 100
	counts := make(map[string]int)
	for i := 0; i < n; i++ {
		got, err := strategy.Select(nil, candidates)
		if err != nil {
			t.Fatalf("Select() unexpected error: %v", err)
		}
		counts[got]++
	}

	m := len(candidates)
	floor := n / m
	ceil := floor
	if n%m != 0 {
		ceil++
	}

	for _, name := range candidates {
		if counts[name] < floor || counts[name] > ceil {
			t.Errorf("provider %q selected %d times, want between %d and %d",
				name, counts[name], floor, ceil)
		}
	}
}

func TestRoundRobinStrategyWeighted(t *testing.T) {
	strategy := NewRoundRobinStrategy(map[string]int{"openai": 2, "voyage": 1})
	candidates := []string{"openai", "voyage"}

	counts := make(map[string]int)
	for i := 0; i < 30; i++ {
		got, err := strategy.Select(nil, candidates)
		if err != nil {
			t.Fatalf("Select() unexpected error: %v", err)
		}
		counts[got]++
	}

	if counts["openai"] != 20 {
		t.Errorf("openai selected %d times, want 20", counts["openai"])
	}
	if counts["voyage"] != 10 {
		t.Errorf("voyage selected %d times, want 10", counts["voyage"])
	}
}

func TestRoundRobinStrategyZeroWeightFallback(t *testing.T) {
	// All-zero weights must not make selection impossible.
	strategy := NewRoundRobinStrategy(map[string]int{"openai": 0, "voyage": 0})
	candidates := []string{"openai", "voyage"}

	got, err := strategy.Select(nil, candidates)
	if err != nil {
		t.Fatalf("Select() unexpected error: %v", err)
	}
	if got != "openai" && got != "voyage" {
		t.Errorf("Select() = %q, want one of the candidates", got)
	}
}

func TestRoundRobinStrategySingleCandidate(t *testing.T) {
	strategy := NewRoundRobinStrategy(nil)

	for i := 0; i < 5; i++ {
		got, err := strategy.Select(nil, []string{"only"})
		if err != nil {
			t.Fatalf("Select() unexpected error: %v", err)
		}
		if got != "only" {
			t.Errorf("Select() = %q, want %q", got, "only")
		}
	}
}

func TestRoundRobinStrategyConcurrent(t *testing.T) {
	strategy := NewRoundRobinStrategy(nil)
	candidates := []string{"openai", "voyage", "local"}

	var wg sync.WaitGroup
	var mu sync.Mutex
	counts := make(map[string]int)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 30; j++ {
				got, err := strategy.Select(nil, candidates)
				if err != nil {
					t.Errorf("Select() unexpected error: %v", err)
					return
				}
				mu.Lock()
				counts[got]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	total := 0
	for _, name := range candidates {
		if counts[name] == 0 {
			t.Errorf("provider %q never selected under concurrency", name)
		}
		total += counts[name]
	}
	if total != 300 {
		t.Errorf("total selections = %d, want 300", total)
	}
}

func TestRoundRobinStrategyUpdateWeights(t *testing.T) {
	strategy := NewRoundRobinStrategy(map[string]int{"openai": 1, "voyage": 1})
	candidates := []string{"openai", "voyage"}

	strategy.UpdateWeights(map[string]int{"openai": 3, "voyage": 1})
	strategy.Reset()

	counts := make(map[string]int)
	for i := 0; i < 40; i++ {
		got, err := strategy.Select(nil, candidates)
		if err != nil {
			t.Fatalf("Select() unexpected error: %v", err)
		}
		counts[got]++
	}

	if counts["openai"] != 30 {
		t.Errorf("openai selected %d times after weight update, want 30", counts["openai"])
	}
}
