package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lattice-search/lattice/pkg/cli"
	"github.com/lattice-search/lattice/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validate a configuration file without starting the service.

The file is loaded with defaults and environment overrides applied, exactly
as the run command would load it.

Examples:
  lattice validate
  lattice validate --config /etc/lattice/lattice.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
		if err != nil {
			return cli.NewConfigError("", err.Error())
		}

		fmt.Printf("✓ Configuration valid: %s\n", cfgFile)
		fmt.Printf("  strategy:  %s\n", cfg.Routing.Strategy)
		fmt.Printf("  providers: %d\n", len(cfg.Providers))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
