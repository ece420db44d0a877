package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantfold/rebalancer/internal/allocation"
	"github.com/quantfold/rebalancer/internal/api"
	"github.com/quantfold/rebalancer/internal/api/handlers"
	"github.com/quantfold/rebalancer/pkg/database"
	"github.com/quantfold/rebalancer/pkg/redis"
)

// apiCmd runs the HTTP API server.
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health                      - health check
  POST /api/allocations/normalize   - stateless normalize call
  POST /api/allocations/rebalance   - run the strategy, persist if on target
  GET  /api/allocations/latest      - latest persisted snapshot

Example:
  rebalancer api
  rebalancer api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	cfg, log, strat, err := setup()
	if err != nil {
		return err
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	svc, err := allocation.NewService(strat, log)
	if err != nil {
		return err
	}

	// Persistence is optional; without DATABASE_URL the server runs in
	// normalize-only mode.
	var store handlers.SnapshotStore
	if cfg.Database.URL != "" {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer db.Close()
		store = allocation.NewRepository(db.Pool)
	} else {
		log.Warn("DATABASE_URL not set, running without persistence")
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

	h := handlers.NewAllocationHandler(svc, store, cache, log)
	router := api.NewRouter(h, cfg, log)
	server := api.New(cfg, log, router)

	// Graceful shutdown on SIGINT/SIGTERM.
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
