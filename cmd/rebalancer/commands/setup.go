package commands

import (
	"fmt"

	"github.com/quantfold/rebalancer/internal/strategyconfig"
	"github.com/quantfold/rebalancer/pkg/config"
	"github.com/quantfold/rebalancer/pkg/logger"
)

// setup loads env config, the logger, and the strategy file shared by every
// subcommand. The --strategy flag overrides STRATEGY_FILE, and --verbose
// forces debug logging.
func setup() (*config.Config, *logger.Logger, *strategyconfig.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	if strategyFile != "" {
		cfg.StrategyFile = strategyFile
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	strat, _, err := strategyconfig.Load(cfg.StrategyFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load strategy %s: %w", cfg.StrategyFile, err)
	}

	for _, w := range strategyconfig.Warn(strat) {
		log.WithField("code", w.Code).Warn(w.Message)
	}

	return cfg, log, strat, nil
}
