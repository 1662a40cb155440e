package cost

import (
	"sync"
	"testing"
	"time"
)

func TestRecordAndTotal(t *testing.T) {
	tr := NewTracker()

	tr.Record("openai", 0.25, "usd")
	tr.Record("openai", 0.75, "usd")
	tr.Record("openai", 1.50, "eur")

	totals := tr.Total("openai")
	if totals["usd"] != 1.0 {
		t.Errorf("Total()[usd] = %v, want 1.0", totals["usd"])
	}
	if totals["eur"] != 1.5 {
		t.Errorf("Total()[eur] = %v, want 1.5", totals["eur"])
	}
}

func TestRecordDefaultsCurrency(t *testing.T) {
	tr := NewTracker()

	tr.Record("openai", 2.0, "")

	if got := tr.Total("openai")["usd"]; got != 2.0 {
		t.Errorf("Total()[usd] = %v, want 2.0", got)
	}
}

func TestRecordIgnoresNonPositiveAmounts(t *testing.T) {
	tr := NewTracker()

	tr.Record("openai", 0, "usd")
	tr.Record("openai", -5, "usd")

	if got := tr.Total("openai"); len(got) != 0 {
		t.Errorf("Total() = %v, want empty", got)
	}
	if got := tr.RecentSpend("openai"); got != 0 {
		t.Errorf("RecentSpend() = %v, want 0", got)
	}
}

func TestTotalUnknownProvider(t *testing.T) {
	tr := NewTracker()

	if got := tr.Total("unknown"); len(got) != 0 {
		t.Errorf("Total() = %v, want empty map", got)
	}
}

func TestRecentSpendSumsAcrossCurrencies(t *testing.T) {
	tr := NewTracker()

	tr.Record("openai", 1.0, "usd")
	tr.Record("openai", 2.0, "eur")

	if got := tr.RecentSpend("openai"); got != 3.0 {
		t.Errorf("RecentSpend() = %v, want 3.0", got)
	}
}

func TestRecentSpendExpiresOutsideWindow(t *testing.T) {
	// A tiny window so the recorded spend ages out quickly.
	tr := NewTrackerWithWindow(40*time.Millisecond, 10*time.Millisecond)

	tr.Record("openai", 5.0, "usd")
	if got := tr.RecentSpend("openai"); got != 5.0 {
		t.Fatalf("RecentSpend() = %v, want 5.0", got)
	}

	time.Sleep(80 * time.Millisecond)

	if got := tr.RecentSpend("openai"); got != 0 {
		t.Errorf("RecentSpend() after window = %v, want 0", got)
	}
	// Lifetime totals never expire.
	if got := tr.Total("openai")["usd"]; got != 5.0 {
		t.Errorf("Total()[usd] = %v, want 5.0", got)
	}
}

func TestSummary(t *testing.T) {
	tr := NewTracker()

	tr.Record("openai", 1.0, "usd")
	tr.Record("voyage", 2.0, "usd")

	summary := tr.Summary()
	if len(summary) != 2 {
		t.Fatalf("Summary() = %v, want 2 providers", summary)
	}
	if summary["voyage"]["usd"] != 2.0 {
		t.Errorf("Summary()[voyage][usd] = %v, want 2.0", summary["voyage"]["usd"])
	}

	// The summary is a copy; mutating it must not affect the tracker.
	summary["openai"]["usd"] = 99
	if got := tr.Total("openai")["usd"]; got != 1.0 {
		t.Errorf("Total()[usd] = %v after summary mutation, want 1.0", got)
	}
}

func TestReset(t *testing.T) {
	tr := NewTracker()

	tr.Record("openai", 1.0, "usd")
	tr.Record("voyage", 2.0, "usd")

	tr.Reset("openai")

	if got := tr.Total("openai"); len(got) != 0 {
		t.Errorf("Total(openai) after reset = %v, want empty", got)
	}
	if got := tr.RecentSpend("openai"); got != 0 {
		t.Errorf("RecentSpend(openai) after reset = %v, want 0", got)
	}
	if got := tr.Total("voyage")["usd"]; got != 2.0 {
		t.Errorf("Total(voyage) = %v, want 2.0", got)
	}
}

func TestRecordConcurrent(t *testing.T) {
	tr := NewTracker()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.Record("openai", 0.01, "usd")
				_ = tr.RecentSpend("openai")
			}
		}()
	}
	wg.Wait()

	got := tr.Total("openai")["usd"]
	want := 10.0
	if got < want-0.0001 || got > want+0.0001 {
		t.Errorf("Total()[usd] = %v, want ~%v", got, want)
	}
}
