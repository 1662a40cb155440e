package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lattice-search/lattice/pkg/cli"
	"github.com/lattice-search/lattice/pkg/config"
)

var providersFlags struct {
	output string
}

// providerRow is one row of `lattice providers` output.
type providerRow struct {
	Name           string `json:"name"`
	Capability     string `json:"capability"`
	Priority       int    `json:"priority"`
	Weight         int    `json:"weight"`
	HealthCheckURL string `json:"health_check_url,omitempty"`
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List configured providers",
	Long: `List the providers declared in the configuration file, after defaults
and environment overrides are applied.

Examples:
  lattice providers
  lattice providers --output json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
		if err != nil {
			return cli.NewConfigError("", err.Error())
		}

		rows := make([]providerRow, 0, len(cfg.Providers))
		for _, p := range cfg.Providers {
			rows = append(rows, providerRow{
				Name:           p.Name,
				Capability:     p.Capability,
				Priority:       p.Priority,
				Weight:         p.Weight,
				HealthCheckURL: p.HealthCheckURL,
			})
		}

		if providersFlags.output == string(cli.FormatJSON) {
			formatter := cli.NewFormatter(cli.FormatJSON)
			return formatter.FormatTo(os.Stdout, rows)
		}

		if len(rows) == 0 {
			fmt.Println("no providers configured")
			return nil
		}
		for _, r := range rows {
			fmt.Printf("%-20s %-12s priority=%-3d weight=%-3d %s\n",
				r.Name, r.Capability, r.Priority, r.Weight, r.HealthCheckURL)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)

	providersCmd.Flags().StringVarP(&providersFlags.output, "output", "o", "text", "output format (text, json)")
}
