package routing

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/lattice-search/lattice/pkg/breaker"
	"github.com/lattice-search/lattice/pkg/health"
)

func newTestFailover(t *testing.T, healthyProviders ...string) (*FailoverManager, *health.Monitor, *breaker.Breaker) {
	t.Helper()

	monitor := health.NewMonitor(health.DefaultConfig(), nil)
	for _, name := range healthyProviders {
		monitor.RecordResult(health.CheckResult{Provider: name, Healthy: true})
		monitor.RecordResult(health.CheckResult{Provider: name, Healthy: true})
	}

	brk := breaker.New(breaker.DefaultConfig(), nil)

	m, err := NewFailoverManager(monitor, brk, nil, firstStrategy{})
	if err != nil {
		t.Fatalf("NewFailoverManager() unexpected error: %v", err)
	}
	return m, monitor, brk
}

func TestFailoverCandidates(t *testing.T) {
	m, monitor, _ := newTestFailover(t, "openai", "voyage", "local")

	for i := 0; i < 6; i++ {
		monitor.RecordResult(health.CheckResult{Provider: "local", Healthy: false})
	}

	tests := []struct {
		name    string
		all     []string
		exclude []string
		want    []string
	}{
		{
			name: "unhealthy removed",
			all:  []string{"openai", "voyage", "local"},
			want: []string{"openai", "voyage"},
		},
		{
			name:    "exclusion removed",
			all:     []string{"openai", "voyage"},
			exclude: []string{"openai"},
			want:    []string{"voyage"},
		},
		{
			name:    "exclusion and unhealthy combined",
			all:     []string{"openai", "voyage", "local"},
			exclude: []string{"voyage"},
			want:    []string{"openai"},
		},
		{
			name:    "order preserved",
			all:     []string{"voyage", "openai"},
			exclude: nil,
			want:    []string{"voyage", "openai"},
		},
		{
			name:    "everything filtered",
			all:     []string{"local"},
			exclude: nil,
			want:    []string{},
		},
		{
			name: "unknown provider is unhealthy",
			all:  []string{"openai", "never-registered"},
			want: []string{"openai"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.FailoverCandidates(tt.all, tt.exclude)
			if len(got) != len(tt.want) {
				t.Fatalf("FailoverCandidates() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("FailoverCandidates()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFailoverSelectProviderFiltersOpenCircuits(t *testing.T) {
	m, _, brk := newTestFailover(t, "openai", "voyage")

	for i := 0; i < 3; i++ {
		brk.RecordOutcome("openai", false)
	}

	got, err := m.SelectProvider([]string{"openai", "voyage"}, nil)
	if err != nil {
		t.Fatalf("SelectProvider() unexpected error: %v", err)
	}
	if got != "voyage" {
		t.Errorf("SelectProvider() = %q, want voyage", got)
	}

	for i := 0; i < 3; i++ {
		brk.RecordOutcome("voyage", false)
	}
	_, err = m.SelectProvider([]string{"openai", "voyage"}, nil)
	if !errors.Is(err, ErrNoProvidersAvailable) {
		t.Errorf("SelectProvider() error = %v, want ErrNoProvidersAvailable", err)
	}
}

func TestExecuteWithFailoverFirstAttemptSucceeds(t *testing.T) {
	m, _, _ := newTestFailover(t, "openai", "voyage")

	var calls []string
	op := func(ctx context.Context, provider string) error {
		calls = append(calls, provider)
		return nil
	}

	result, err := m.ExecuteWithFailover(
		context.Background(),
		[]string{"openai", "voyage"},
		NewFailoverContext("embed", 3),
		nil,
		op,
	)
	if err != nil {
		t.Fatalf("ExecuteWithFailover() unexpected error: %v", err)
	}
	if result.Provider != "openai" {
		t.Errorf("Provider = %q, want openai", result.Provider)
	}
	if result.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", result.Attempts)
	}
	if result.RunID == "" {
		t.Error("RunID is empty")
	}
	if len(calls) != 1 {
		t.Errorf("operation invoked %d times, want 1", len(calls))
	}
}

func TestExecuteWithFailoverRetriesNextCandidate(t *testing.T) {
	m, _, _ := newTestFailover(t, "openai", "voyage")

	var calls []string
	op := func(ctx context.Context, provider string) error {
		calls = append(calls, provider)
		if provider == "openai" {
			return errors.New("connection refused")
		}
		return nil
	}

	result, err := m.ExecuteWithFailover(
		context.Background(),
		[]string{"openai", "voyage"},
		NewFailoverContext("embed", 3),
		nil,
		op,
	)
	if err != nil {
		t.Fatalf("ExecuteWithFailover() unexpected error: %v", err)
	}
	if result.Provider != "voyage" {
		t.Errorf("Provider = %q, want voyage", result.Provider)
	}
	if result.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", result.Attempts)
	}
	if len(calls) != 2 || calls[0] != "openai" || calls[1] != "voyage" {
		t.Errorf("calls = %v, want [openai voyage]", calls)
	}
}

func TestExecuteWithFailoverExhaustsBudget(t *testing.T) {
	m, _, _ := newTestFailover(t, "openai", "voyage", "local")

	calls := 0
	op := func(ctx context.Context, provider string) error {
		calls++
		return errors.New("boom")
	}

	_, err := m.ExecuteWithFailover(
		context.Background(),
		[]string{"openai", "voyage", "local"},
		NewFailoverContext("embed", 2),
		nil,
		op,
	)
	if !errors.Is(err, ErrFailoverExhausted) {
		t.Fatalf("ExecuteWithFailover() error = %v, want ErrFailoverExhausted", err)
	}
	if calls != 2 {
		t.Errorf("operation invoked %d times, want exactly MaxAttempts=2", calls)
	}

	var exhausted *FailoverExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("error type = %T, want *FailoverExhaustedError", err)
	}
	if exhausted.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", exhausted.Attempts)
	}

	attempted := exhausted.AttemptedProviders
	sort.Strings(attempted)
	if len(attempted) != 2 || attempted[0] != "openai" || attempted[1] != "voyage" {
		t.Errorf("AttemptedProviders = %v, want [openai voyage]", attempted)
	}
	if !errors.Is(err, ErrOperationFailed) {
		t.Errorf("exhausted error does not wrap the last operation failure: %v", err)
	}
}

func TestExecuteWithFailoverNeverRetriesSameProvider(t *testing.T) {
	m, _, _ := newTestFailover(t, "openai", "voyage")

	seen := make(map[string]int)
	op := func(ctx context.Context, provider string) error {
		seen[provider]++
		return errors.New("boom")
	}

	_, err := m.ExecuteWithFailover(
		context.Background(),
		[]string{"openai", "voyage"},
		NewFailoverContext("embed", 5),
		nil,
		op,
	)
	if !errors.Is(err, ErrFailoverExhausted) {
		t.Fatalf("ExecuteWithFailover() error = %v, want ErrFailoverExhausted", err)
	}
	for provider, count := range seen {
		if count != 1 {
			t.Errorf("provider %q attempted %d times, want 1", provider, count)
		}
	}
}

func TestExecuteWithFailoverFailsFastWithNoCandidates(t *testing.T) {
	m, _, _ := newTestFailover(t)

	op := func(ctx context.Context, provider string) error {
		t.Error("operation must not be invoked")
		return nil
	}

	_, err := m.ExecuteWithFailover(
		context.Background(),
		nil,
		NewFailoverContext("embed", 3),
		nil,
		op,
	)
	if !errors.Is(err, ErrNoProvidersAvailable) {
		t.Errorf("ExecuteWithFailover() error = %v, want ErrNoProvidersAvailable", err)
	}
	if errors.Is(err, ErrFailoverExhausted) {
		t.Error("zero attempts must be a structural failure, not exhaustion")
	}
}

func TestExecuteWithFailoverHonorsExclusions(t *testing.T) {
	m, _, _ := newTestFailover(t, "openai", "voyage")

	op := func(ctx context.Context, provider string) error {
		if provider == "openai" {
			t.Error("excluded provider was invoked")
		}
		return nil
	}

	pctx := &ProviderContext{ExcludedProviders: []string{"openai"}}
	result, err := m.ExecuteWithFailover(
		context.Background(),
		[]string{"openai", "voyage"},
		NewFailoverContext("embed", 3),
		pctx,
		op,
	)
	if err != nil {
		t.Fatalf("ExecuteWithFailover() unexpected error: %v", err)
	}
	if result.Provider != "voyage" {
		t.Errorf("Provider = %q, want voyage", result.Provider)
	}
}

func TestExecuteWithFailoverCancellationIsNotFailure(t *testing.T) {
	m, monitor, brk := newTestFailover(t, "openai")

	ctx, cancel := context.WithCancel(context.Background())
	op := func(ctx context.Context, provider string) error {
		cancel()
		<-ctx.Done()
		return ctx.Err()
	}

	_, err := m.ExecuteWithFailover(
		ctx,
		[]string{"openai"},
		NewFailoverContext("embed", 3),
		nil,
		op,
	)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("ExecuteWithFailover() error = %v, want context.Canceled", err)
	}

	// The abandoned attempt must not charge the provider.
	if got := monitor.GetHealth("openai"); got != health.StatusHealthy {
		t.Errorf("GetHealth() = %q, want healthy (cancellation charged the provider)", got)
	}
	if got := brk.State("openai"); got != breaker.StateClosed {
		t.Errorf("breaker State() = %q, want closed", got)
	}
}

func TestExecuteWithFailoverAlreadyCancelled(t *testing.T) {
	m, _, _ := newTestFailover(t, "openai")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	op := func(ctx context.Context, provider string) error {
		t.Error("operation must not be invoked with a cancelled context")
		return nil
	}

	_, err := m.ExecuteWithFailover(ctx, []string{"openai"}, NewFailoverContext("embed", 3), nil, op)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ExecuteWithFailover() error = %v, want context.Canceled", err)
	}
}

func TestExecuteWithFailoverNilOperation(t *testing.T) {
	m, _, _ := newTestFailover(t, "openai")

	_, err := m.ExecuteWithFailover(context.Background(), []string{"openai"}, nil, nil, nil)
	if err == nil {
		t.Error("ExecuteWithFailover() expected error for nil operation")
	}
}

func TestExecuteWithFailoverNilFailoverContext(t *testing.T) {
	m, _, _ := newTestFailover(t, "openai")

	calls := 0
	op := func(ctx context.Context, provider string) error {
		calls++
		return errors.New("boom")
	}

	// A nil context defaults to a single attempt.
	_, err := m.ExecuteWithFailover(context.Background(), []string{"openai"}, nil, nil, op)
	if !errors.Is(err, ErrFailoverExhausted) {
		t.Errorf("ExecuteWithFailover() error = %v, want ErrFailoverExhausted", err)
	}
	if calls != 1 {
		t.Errorf("operation invoked %d times, want 1", calls)
	}
}

func TestExecuteWithFailoverReportsOutcomes(t *testing.T) {
	m, monitor, brk := newTestFailover(t, "openai", "voyage")

	op := func(ctx context.Context, provider string) error {
		if provider == "openai" {
			return errors.New("boom")
		}
		return nil
	}

	result, err := m.ExecuteWithFailover(
		context.Background(),
		[]string{"openai", "voyage"},
		NewFailoverContext("embed", 3),
		nil,
		op,
	)
	if err != nil {
		t.Fatalf("ExecuteWithFailover() unexpected error: %v", err)
	}
	if result.Duration < 0 {
		t.Errorf("Duration = %v, want >= 0", result.Duration)
	}

	// The failed attempt charged openai; the success left voyage healthy.
	if last, ok := monitor.LastResult("openai"); !ok || last.Healthy {
		t.Errorf("LastResult(openai) = %+v, %v; want recorded failure", last, ok)
	}
	if got := monitor.GetHealth("voyage"); got != health.StatusHealthy {
		t.Errorf("GetHealth(voyage) = %q, want healthy", got)
	}
	if got := brk.State("voyage"); got != breaker.StateClosed {
		t.Errorf("breaker State(voyage) = %q, want closed", got)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "unknown"},
		{"deadline", context.DeadlineExceeded, "timeout"},
		{"wrapped deadline", &OperationFailedError{Provider: "openai", Cause: context.DeadlineExceeded}, "timeout"},
		{"circuit open", &CircuitOpenError{Provider: "openai"}, "circuit_open"},
		{"no providers", &NoProvidersAvailableError{}, "no_providers"},
		{"generic", errors.New("boom"), "operation_failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyError(tt.err); got != tt.want {
				t.Errorf("classifyError(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestFailoverContextAttemptTracking(t *testing.T) {
	fctx := NewFailoverContext("embed", 0)
	if fctx.MaxAttempts != 1 {
		t.Errorf("MaxAttempts = %d, want raised to 1", fctx.MaxAttempts)
	}

	fctx.MarkAttempted("openai")
	if !fctx.Attempted("openai") {
		t.Error("Attempted(openai) = false after MarkAttempted")
	}
	if fctx.Attempted("voyage") {
		t.Error("Attempted(voyage) = true, want false")
	}
	if got := fctx.AttemptedProviders(); len(got) != 1 || got[0] != "openai" {
		t.Errorf("AttemptedProviders() = %v, want [openai]", got)
	}
}
