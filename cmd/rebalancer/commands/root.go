package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "rebalancer",
	Short: "Deterministic weight-allocation normalizer for portfolio rebalancing",
	Long: `Rebalancer converts raw target allocations into an enforceable
distribution: per-entry bounds respected, disabled entries zeroed, and the
total summing exactly to the target in basis points.

Examples:
  rebalancer allocate
  rebalancer verify proposed.json
  rebalancer api
  rebalancer scheduler start`,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML file (default from STRATEGY_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
