package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPCheckerHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	checker := NewHTTPChecker(map[string]string{"openai": srv.URL}, time.Second)

	result := checker.CheckHealth(context.Background(), "openai")
	if !result.Healthy {
		t.Errorf("CheckHealth() healthy = false, err = %q", result.Err)
	}
	if result.ResponseTime <= 0 {
		t.Error("CheckHealth() should record a response time")
	}
}

func TestHTTPCheckerUnhealthyStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	checker := NewHTTPChecker(map[string]string{"openai": srv.URL}, time.Second)

	if result := checker.CheckHealth(context.Background(), "openai"); result.Healthy {
		t.Error("CheckHealth() healthy = true for 500 response")
	}
}

func TestHTTPCheckerNoEndpoint(t *testing.T) {
	checker := NewHTTPChecker(nil, time.Second)

	result := checker.CheckHealth(context.Background(), "unknown")
	if result.Healthy {
		t.Error("CheckHealth() healthy = true for provider without endpoint")
	}
	if result.Err == "" {
		t.Error("CheckHealth() should explain the missing endpoint")
	}
}

func TestHTTPCheckerUnreachable(t *testing.T) {
	checker := NewHTTPChecker(map[string]string{"openai": "http://127.0.0.1:1"}, 500*time.Millisecond)

	if result := checker.CheckHealth(context.Background(), "openai"); result.Healthy {
		t.Error("CheckHealth() healthy = true for unreachable endpoint")
	}
}

func TestHTTPCheckerRespectsContext(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	checker := NewHTTPChecker(map[string]string{"openai": srv.URL}, 10*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if result := checker.CheckHealth(ctx, "openai"); result.Healthy {
		t.Error("CheckHealth() healthy = true for cancelled probe")
	}
}
