package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "lattice",
	Short: "Lattice - provider resilience and routing for semantic code search",
	Long: `Lattice routes semantic code-search operations across backend providers.

It provides:
  - Provider registration by capability (embedding, vector store, cache)
  - Health monitoring with stepped status transitions
  - Per-provider circuit breakers with persistent state
  - Priority, round-robin, and contextual selection strategies
  - Automatic failover across alternate providers
  - Cost tracking and Prometheus metrics`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "lattice.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
