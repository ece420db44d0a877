package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quantfold/rebalancer/internal/normalizer"
)

// verifyCmd checks a proposed allocation file against the strategy bounds.
var verifyCmd = &cobra.Command{
	Use:   "verify [allocation.json]",
	Short: "Verify a proposed allocation against the strategy",
	Long: `Reads a proposed allocation and checks it against the strategy file:
every symbol known, inactive entries at zero, active entries within their
bounds, and the total summing exactly to the target.

The allocation file maps symbols to basis points:

  {"weights": {"VTI": 6000, "VXUS": 3000, "BND": 1000}}

Exits non-zero on any violation.

Example:
  rebalancer verify proposed.json`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

// proposedAllocation is the verify input format.
type proposedAllocation struct {
	Weights map[string]uint64 `json:"weights"`
}

func runVerify(cmd *cobra.Command, args []string) error {
	_, _, strat, err := setup()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read allocation file: %w", err)
	}

	var proposed proposedAllocation
	if err := json.Unmarshal(data, &proposed); err != nil {
		return fmt.Errorf("parse allocation file: %w", err)
	}

	var violations []string

	known := make(map[string]bool, len(strat.Entries))
	for _, e := range strat.Entries {
		known[e.Symbol] = true
	}
	for symbol := range proposed.Weights {
		if !known[symbol] {
			violations = append(violations, fmt.Sprintf("unknown symbol %q", symbol))
		}
	}

	weights := make([]uint64, len(strat.Entries))
	for i, e := range strat.Entries {
		w := proposed.Weights[e.Symbol]
		weights[i] = w

		if !e.Active {
			if w != 0 {
				violations = append(violations, fmt.Sprintf("%s: inactive but weighted %d bps", e.Symbol, w))
			}
			continue
		}
		if w < e.MinBps {
			violations = append(violations, fmt.Sprintf("%s: %d bps below floor %d", e.Symbol, w, e.MinBps))
		}
		if w > e.MaxBps {
			violations = append(violations, fmt.Sprintf("%s: %d bps above cap %d", e.Symbol, w, e.MaxBps))
		}
	}

	target := strat.Allocation.TargetBps
	if !normalizer.OnTarget(weights, target) {
		violations = append(violations,
			fmt.Sprintf("total %d bps, want exactly %d", normalizer.Sum(weights), target))
	}

	if len(violations) > 0 {
		for _, v := range violations {
			fmt.Printf("  ✗ %s\n", v)
		}
		return fmt.Errorf("%d violation(s)", len(violations))
	}

	fmt.Printf("OK: %d entries, total %d bps\n", len(strat.Entries), target)
	return nil
}
