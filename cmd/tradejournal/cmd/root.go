package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/config"
)

var rootCmd = &cobra.Command{
	Use:   "tradejournal",
	Short: "A personal trading journal with statistics and what-if simulation",
	Long: `Tradejournal records discretionary trades and derives statistics from them.

It provides tools for:
  - Journaling trades with risk-based position sizing
  - Aggregate statistics, a PnL calendar and a per-strategy breakdown
  - R-multiple heatmaps and a fixed-fractional equity simulation
  - A JSON HTTP API for the dashboard
  - CSV import/export and scheduled backups to S3 or local storage`,
	SilenceUsage: true,
}

var (
	cfgFile string
	verbose bool
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at the configured level instead of warn")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
