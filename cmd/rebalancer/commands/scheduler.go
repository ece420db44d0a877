package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quantfold/rebalancer/internal/allocation"
	"github.com/quantfold/rebalancer/internal/scheduler"
	"github.com/quantfold/rebalancer/internal/scheduler/jobs"
	"github.com/quantfold/rebalancer/pkg/database"
	"github.com/quantfold/rebalancer/pkg/redis"
)

// schedulerCmd manages the rebalance scheduler.
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Scheduler management",
	Long: `Starts the scheduler daemon or inspects registered jobs.

Subcommands:
  start  - start the scheduler
  list   - list registered jobs

Example:
  rebalancer scheduler start`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler",
		Long: `Starts the scheduler and runs the rebalance job on the strategy's
cron schedule. Off-target results are logged and refused, never persisted.

Stop with Ctrl+C.`,
		RunE: runSchedulerStart,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  runSchedulerList,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
}

func runSchedulerStart(cmd *cobra.Command, args []string) error {
	cfg, log, strat, err := setup()
	if err != nil {
		return err
	}

	if strat.Schedule.Cron == "" {
		return fmt.Errorf("strategy %s has no schedule.cron", strat.Meta.StrategyID)
	}

	svc, err := allocation.NewService(strat, log)
	if err != nil {
		return err
	}

	var store jobs.SnapshotStore
	if cfg.Database.URL != "" {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer db.Close()
		store = allocation.NewRepository(db.Pool)
	} else {
		log.Warn("DATABASE_URL not set, scheduled allocations will not be persisted")
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()

	var cache *redis.Cache
	if redisClient.Enabled() {
		cache = redis.NewCache(redisClient, "rebalancer")
	}

	sched := scheduler.New(log)
	job := jobs.NewRebalanceJob(svc, store, cache, strat.Schedule.Cron, log)
	if err := sched.AddJob(job); err != nil {
		return err
	}

	sched.Start()
	defer sched.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.WithField("signal", sig.String()).Info("Shutdown signal received")
	return nil
}

func runSchedulerList(cmd *cobra.Command, args []string) error {
	_, _, strat, err := setup()
	if err != nil {
		return err
	}

	fmt.Println("Registered jobs:")
	fmt.Printf("  rebalance  %s  (strategy %s)\n", strat.Schedule.Cron, strat.Meta.StrategyID)
	return nil
}
