// Package allocation orchestrates one rebalance round: strategy weights in,
// normalized enforceable allocation out, with the sum re-verified before
// anything is persisted.
package allocation

import (
	"context"
	"fmt"
	"time"

	"github.com/quantfold/rebalancer/internal/normalizer"
	"github.com/quantfold/rebalancer/internal/strategy"
	"github.com/quantfold/rebalancer/internal/strategyconfig"
	"github.com/quantfold/rebalancer/pkg/logger"
)

// Allocation is one computed rebalance result. OnTarget reports whether the
// final weights sum exactly to the target; off-target allocations are
// returned for inspection but never committed.
type Allocation struct {
	StrategyID string       `json:"strategy_id"`
	ConfigHash string       `json:"config_hash"`
	TargetBps  uint64       `json:"target_bps"`
	TotalBps   uint64       `json:"total_bps"`
	OnTarget   bool         `json:"on_target"`
	Entries    []EntryAlloc `json:"entries"`
	CreatedAt  time.Time    `json:"created_at"`
}

// EntryAlloc is the per-entry view of an allocation.
type EntryAlloc struct {
	Symbol   string `json:"symbol"`
	Active   bool   `json:"active"`
	RawBps   uint64 `json:"raw_bps"`
	FinalBps uint64 `json:"final_bps"`
}

// Service runs the strategy and the normalizer against a loaded config.
type Service struct {
	cfg    *strategyconfig.Config
	hash   string
	logger *logger.Logger
}

// NewService creates an allocation service for one strategy config.
func NewService(cfg *strategyconfig.Config, log *logger.Logger) (*Service, error) {
	hash, err := strategyconfig.Hash(cfg)
	if err != nil {
		return nil, fmt.Errorf("hash config: %w", err)
	}

	return &Service{
		cfg:    cfg,
		hash:   hash,
		logger: log.WithField("strategy", cfg.Meta.StrategyID),
	}, nil
}

// Rebalance computes a fresh allocation: raw weights from the configured
// mode, then normalization, then the sum re-check. An off-target result is
// not an error; it comes back with OnTarget=false and the caller decides.
func (s *Service) Rebalance(ctx context.Context) (*Allocation, error) {
	producer, err := strategy.ForMode(
		strategy.Mode(s.cfg.Allocation.Mode),
		s.cfg.FixedWeights(),
		s.cfg.Scores(),
	)
	if err != nil {
		return nil, err
	}

	active := s.cfg.ActiveFlags()
	target := s.cfg.Allocation.TargetBps

	raw, err := producer.RawWeights(active, target)
	if err != nil {
		return nil, fmt.Errorf("raw weights: %w", err)
	}

	final, err := normalizer.Normalize(raw, s.cfg.MinBounds(), s.cfg.MaxBounds(), active, target)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}

	alloc := &Allocation{
		StrategyID: s.cfg.Meta.StrategyID,
		ConfigHash: s.hash,
		TargetBps:  target,
		TotalBps:   normalizer.Sum(final),
		Entries:    make([]EntryAlloc, len(s.cfg.Entries)),
		CreatedAt:  time.Now().UTC(),
	}
	alloc.OnTarget = alloc.TotalBps == target

	for i, e := range s.cfg.Entries {
		alloc.Entries[i] = EntryAlloc{
			Symbol:   e.Symbol,
			Active:   e.Active,
			RawBps:   raw[i],
			FinalBps: final[i],
		}
	}

	if alloc.OnTarget {
		s.logger.WithFields(map[string]interface{}{
			"entries": len(alloc.Entries),
			"total":   alloc.TotalBps,
		}).Info("Allocation computed")
	} else {
		s.logger.WithFields(map[string]interface{}{
			"total":  alloc.TotalBps,
			"target": target,
		}).Warn("Allocation off target, must not be committed")
	}

	return alloc, nil
}

// ConfigHash returns the hash of the loaded strategy config.
func (s *Service) ConfigHash() string {
	return s.hash
}

// StrategyID returns the configured strategy identifier.
func (s *Service) StrategyID() string {
	return s.cfg.Meta.StrategyID
}
