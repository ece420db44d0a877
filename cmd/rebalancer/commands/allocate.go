package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantfold/rebalancer/internal/allocation"
	"github.com/quantfold/rebalancer/pkg/database"
)

// allocateCmd computes one allocation round and prints it.
var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Compute a normalized allocation from the strategy file",
	Long: `Runs the configured weighting mode, normalizes the result against
the per-entry bounds, and prints the final allocation.

The command exits non-zero when the bounds make the target unreachable:
an off-target allocation must never be acted on.

Example:
  rebalancer allocate
  rebalancer allocate --strategy config/strategy/balanced_growth.yaml --save`,
	RunE: runAllocate,
}

var allocateSave bool

func init() {
	rootCmd.AddCommand(allocateCmd)
	allocateCmd.Flags().BoolVar(&allocateSave, "save", false, "persist the snapshot to the database")
}

func runAllocate(cmd *cobra.Command, args []string) error {
	cfg, log, strat, err := setup()
	if err != nil {
		return err
	}

	svc, err := allocation.NewService(strat, log)
	if err != nil {
		return err
	}

	ctx := context.Background()
	alloc, err := svc.Rebalance(ctx)
	if err != nil {
		return err
	}

	printAllocation(alloc)

	if !alloc.OnTarget {
		return fmt.Errorf("allocation off target: total=%d target=%d", alloc.TotalBps, alloc.TargetBps)
	}

	if allocateSave {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer db.Close()

		repo := allocation.NewRepository(db.Pool)
		if err := repo.Save(ctx, alloc); err != nil {
			return err
		}
		fmt.Println("Snapshot saved")
	}

	return nil
}

func printAllocation(alloc *allocation.Allocation) {
	fmt.Println()
	fmt.Printf("Strategy : %s\n", alloc.StrategyID)
	fmt.Printf("Config   : %s\n", alloc.ConfigHash[:12])
	fmt.Println("───────────────────────────────────────")
	fmt.Printf("  %-10s %8s %8s\n", "SYMBOL", "RAW", "FINAL")
	for _, e := range alloc.Entries {
		marker := ""
		if !e.Active {
			marker = " (inactive)"
		}
		fmt.Printf("  %-10s %7.2f%% %7.2f%%%s\n",
			e.Symbol, float64(e.RawBps)/100, float64(e.FinalBps)/100, marker)
	}
	fmt.Println("───────────────────────────────────────")
	fmt.Printf("  Total    : %.2f%% (target %.2f%%)\n",
		float64(alloc.TotalBps)/100, float64(alloc.TargetBps)/100)
	if alloc.OnTarget {
		fmt.Println("  Status   : on target")
	} else {
		fmt.Println("  Status   : OFF TARGET — do not commit")
	}
	fmt.Println()
}
