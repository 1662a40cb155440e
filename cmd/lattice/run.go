package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lattice-search/lattice/pkg/breaker"
	"github.com/lattice-search/lattice/pkg/cli"
	"github.com/lattice-search/lattice/pkg/config"
	"github.com/lattice-search/lattice/pkg/cost"
	"github.com/lattice-search/lattice/pkg/health"
	"github.com/lattice-search/lattice/pkg/registry"
	"github.com/lattice-search/lattice/pkg/routing"
	"github.com/lattice-search/lattice/pkg/routing/strategies"
	"github.com/lattice-search/lattice/pkg/server"
	"github.com/lattice-search/lattice/pkg/telemetry/logging"
	"github.com/lattice-search/lattice/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	watch         bool
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Lattice routing service",
	Long: `Start the Lattice routing service with the specified configuration.

The service registers the configured providers, restores persisted circuit
state, starts background health probing, and serves the admin endpoints
(health, stats, metrics) on the configured address.

Examples:
  # Start with default config
  lattice run

  # Start with custom config
  lattice run --config /etc/lattice/lattice.yaml

  # Override listen address
  lattice run --listen 0.0.0.0:8480

  # Reload provider priorities and weights on config changes
  lattice run --watch

  # Validate config without starting
  lattice run --dry-run`,
	RunE: runService,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.watch, "watch", false, "reload provider priorities and weights on config changes")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting service")
}

func runService(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Telemetry.Logging.Level,
		Format: cfg.Telemetry.Logging.Format,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Lattice v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	// Provider registry
	reg := registry.New()
	healthURLs := make(map[string]string)
	for _, p := range cfg.Providers {
		err := reg.Register(registry.Descriptor{
			Name:           p.Name,
			Capability:     registry.Capability(p.Capability),
			Priority:       p.Priority,
			Weight:         p.Weight,
			HealthCheckURL: p.HealthCheckURL,
		})
		if err != nil {
			return cli.NewConfigError("providers", err.Error())
		}
		if p.HealthCheckURL != "" {
			healthURLs[p.Name] = p.HealthCheckURL
		}
	}
	if reg.Count() == 0 {
		slog.Warn("no providers configured")
	}
	fmt.Printf("✓ Providers registered (%d providers)\n", reg.Count())

	// Metrics
	collector := metrics.NewCollector(metrics.Config{
		Enabled: cfg.Telemetry.Metrics.Enabled,
	}, nil)

	// Health monitor and background probing
	checker := health.NewHTTPChecker(healthURLs, cfg.Health.CheckTimeout)
	monitor := health.NewMonitor(health.Config{
		FailureThreshold: cfg.Health.FailureThreshold,
		SuccessThreshold: cfg.Health.SuccessThreshold,
		LatencySmoothing: cfg.Health.LatencySmoothing,
	}, checker)

	// Circuit breaker with configured persistence
	store, err := newStateStore(&cfg.Breaker.Persistence)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer store.Close()

	brkConfig := breaker.DefaultConfig()
	brkConfig.FailureThreshold = cfg.Breaker.FailureThreshold
	brkConfig.ResetTimeout = cfg.Breaker.ResetTimeout
	brkConfig.HalfOpenMaxCalls = cfg.Breaker.HalfOpenMaxCalls
	brkConfig.HalfOpenSuccesses = cfg.Breaker.HalfOpenSuccesses

	brk := breaker.New(brkConfig, store)
	brk.OnStateChange(func(provider string, state breaker.State) {
		collector.RecordStateChange(provider, string(state))
	})

	ctx, cancel := context.WithCancel(cli.SetupSignalHandler())
	defer cancel()

	if err := brk.Restore(ctx); err != nil {
		slog.Warn("failed to restore circuit state, starting clean", "error", err)
	} else {
		fmt.Println("✓ Circuit state restored")
	}

	// Cost tracking
	costs := cost.NewTrackerWithWindow(cfg.Cost.Window, cfg.Cost.BucketSize)

	// Selection strategy and router
	strategy, err := strategies.New(cfg.Routing.Strategy, strategies.Deps{
		Priorities: reg.Priorities(),
		Weights:    reg.Weights(),
		Health:     monitor,
		Costs:      costs,
		Latency:    monitor,
	})
	if err != nil {
		return cli.NewConfigError("routing.strategy", err.Error())
	}

	router, err := routing.NewRouter(reg, monitor, brk, costs, collector, strategy)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	fmt.Printf("✓ Router initialized (strategy: %s)\n", strategy.GetName())

	// Background health probing
	if cfg.Health.CheckSchedule != "" {
		scheduler := health.NewScheduler(monitor, reg, cfg.Health.CheckSchedule, cfg.Health.CheckTimeout)
		if err := scheduler.Start(ctx); err != nil {
			slog.Warn("failed to start health scheduler", "error", err)
		} else {
			defer scheduler.Stop()
			fmt.Printf("✓ Health probing scheduled (%s)\n", cfg.Health.CheckSchedule)
		}
	}

	// Config hot reload
	if runFlags.watch {
		watcher, err := config.NewWatcher(cfgFile, logger)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		go func() {
			err := watcher.Watch(ctx, func(next *config.Config) {
				applyProviderUpdates(reg, strategy, next)
			})
			if err != nil {
				slog.Error("config watcher exited", "error", err)
			}
		}()
		defer watcher.Stop()
		fmt.Println("✓ Config watcher started")
	}

	// Admin server
	var metricsHandler = collector.Handler()
	if !cfg.Telemetry.Metrics.Enabled {
		metricsHandler = nil
	}
	srv := server.NewServer(&cfg.Server, router, cfg.Telemetry.Metrics.Path, metricsHandler)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	fmt.Println()
	fmt.Printf("✓ Admin server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/healthz\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	select {
	case err := <-errChan:
		return cli.NewCommandError("run", err)
	case <-ctx.Done():
		fmt.Println("\nShutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			return cli.NewCommandError("run", err)
		}
		fmt.Println("✓ Service stopped")
		return nil
	}
}

// newStateStore builds the configured circuit state store.
func newStateStore(cfg *config.PersistenceConfig) (breaker.StateStore, error) {
	switch cfg.Backend {
	case "sqlite":
		store, err := breaker.NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open circuit state store: %w", err)
		}
		return store, nil
	case "memory":
		return breaker.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported persistence backend: %s", cfg.Backend)
	}
}

// applyProviderUpdates pushes reloaded provider priorities and weights into
// the registry and the running strategy. Provider additions and removals
// require a restart; only tuning fields are hot-reloaded.
func applyProviderUpdates(reg *registry.Registry, strategy routing.Strategy, next *config.Config) {
	for _, p := range next.Providers {
		err := reg.Register(registry.Descriptor{
			Name:           p.Name,
			Capability:     registry.Capability(p.Capability),
			Priority:       p.Priority,
			Weight:         p.Weight,
			HealthCheckURL: p.HealthCheckURL,
		})
		if err != nil {
			slog.Warn("skipping provider update", "provider", p.Name, "error", err)
		}
	}

	switch s := strategy.(type) {
	case *strategies.PriorityStrategy:
		s.UpdatePriorities(reg.Priorities())
	case *strategies.RoundRobinStrategy:
		s.UpdateWeights(reg.Weights())
	}

	slog.Info("provider tuning reloaded", "providers", reg.Count())
}
