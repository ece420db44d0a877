// Package jobs holds the scheduled job implementations.
package jobs

import (
	"context"
	"fmt"

	"github.com/quantfold/rebalancer/internal/allocation"
	"github.com/quantfold/rebalancer/pkg/logger"
	"github.com/quantfold/rebalancer/pkg/redis"
)

// SnapshotStore is the persistence surface the rebalance job needs.
type SnapshotStore interface {
	Save(ctx context.Context, alloc *allocation.Allocation) error
}

// RebalanceJob recomputes the allocation on a schedule and persists it when
// the sum lands on target.
type RebalanceJob struct {
	service  *allocation.Service
	store    SnapshotStore
	cache    *redis.Cache
	schedule string
	logger   *logger.Logger
}

// NewRebalanceJob creates the scheduled rebalance job. store and cache may be
// nil for a compute-only run.
func NewRebalanceJob(svc *allocation.Service, store SnapshotStore, cache *redis.Cache, schedule string, log *logger.Logger) *RebalanceJob {
	return &RebalanceJob{
		service:  svc,
		store:    store,
		cache:    cache,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name.
func (j *RebalanceJob) Name() string {
	return "rebalance"
}

// Schedule returns the cron expression from the strategy config.
func (j *RebalanceJob) Schedule() string {
	return j.schedule
}

// Run computes one allocation round. An off-target result is a refusal, not a
// failure: the normalizer is deterministic, so retrying cannot change the
// outcome, and the job logs and returns nil instead of erroring.
func (j *RebalanceJob) Run(ctx context.Context) error {
	alloc, err := j.service.Rebalance(ctx)
	if err != nil {
		return fmt.Errorf("rebalance: %w", err)
	}

	if !alloc.OnTarget {
		j.logger.WithFields(map[string]interface{}{
			"strategy": alloc.StrategyID,
			"total":    alloc.TotalBps,
			"target":   alloc.TargetBps,
		}).Warn("Scheduled rebalance off target, refusing to commit")
		return nil
	}

	if j.store != nil {
		if err := j.store.Save(ctx, alloc); err != nil {
			return fmt.Errorf("persist allocation: %w", err)
		}
	}

	if j.cache != nil {
		key := redis.LatestAllocationKey(alloc.StrategyID)
		if err := j.cache.Set(ctx, key, alloc, redis.TTLAllocation); err != nil {
			j.logger.WithError(err).Warn("Failed to cache allocation")
		}
	}

	return nil
}
