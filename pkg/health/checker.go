package health

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Checker performs a health check against a single provider.
// It is injected into the Monitor so that the resilience layer never speaks
// provider-specific protocols itself.
type Checker interface {
	// CheckHealth probes the provider and returns the result.
	// Implementations must respect context cancellation.
	CheckHealth(ctx context.Context, provider string) CheckResult
}

// CheckerFunc adapts a plain function to the Checker interface.
type CheckerFunc func(ctx context.Context, provider string) CheckResult

// CheckHealth implements Checker.
func (f CheckerFunc) CheckHealth(ctx context.Context, provider string) CheckResult {
	return f(ctx, provider)
}

// HTTPChecker is the default Checker implementation. It issues a GET request
// to each provider's configured health-check URL and treats any 2xx response
// as healthy. Providers without a configured URL report unhealthy, consistent
// with the fail-closed default.
type HTTPChecker struct {
	// urls maps provider name to its health-check endpoint.
	urls map[string]string

	client *http.Client
}

// NewHTTPChecker creates an HTTP health checker for the given provider
// endpoint map. Timeout bounds each probe; zero means 5 seconds.
func NewHTTPChecker(urls map[string]string, timeout time.Duration) *HTTPChecker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if urls == nil {
		urls = make(map[string]string)
	}

	return &HTTPChecker{
		urls:   urls,
		client: &http.Client{Timeout: timeout},
	}
}

// CheckHealth implements Checker.
func (c *HTTPChecker) CheckHealth(ctx context.Context, provider string) CheckResult {
	url, ok := c.urls[provider]
	if !ok || url == "" {
		return CheckResult{
			Provider: provider,
			Healthy:  false,
			Err:      "no health check endpoint configured",
		}
	}

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return CheckResult{
			Provider:     provider,
			Healthy:      false,
			ResponseTime: time.Since(start),
			Err:          err.Error(),
		}
	}

	resp, err := c.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return CheckResult{
			Provider:     provider,
			Healthy:      false,
			ResponseTime: elapsed,
			Err:          err.Error(),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return CheckResult{
			Provider:     provider,
			Healthy:      false,
			ResponseTime: elapsed,
			Err:          fmt.Sprintf("health endpoint returned HTTP %d", resp.StatusCode),
		}
	}

	return CheckResult{
		Provider:     provider,
		Healthy:      true,
		ResponseTime: elapsed,
	}
}
