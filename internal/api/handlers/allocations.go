// Package handlers implements the HTTP API endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quantfold/rebalancer/internal/allocation"
	"github.com/quantfold/rebalancer/internal/normalizer"
	"github.com/quantfold/rebalancer/pkg/logger"
	"github.com/quantfold/rebalancer/pkg/redis"
)

// SnapshotStore is the persistence surface the handler needs.
type SnapshotStore interface {
	Save(ctx context.Context, alloc *allocation.Allocation) error
	GetLatest(ctx context.Context, strategyID string) (*allocation.Allocation, error)
}

// AllocationHandler serves the allocation endpoints.
type AllocationHandler struct {
	service *allocation.Service
	store   SnapshotStore
	cache   *redis.Cache
	logger  *logger.Logger
}

// NewAllocationHandler creates the handler. store and cache may be nil when
// the server runs without persistence (normalize-only mode).
func NewAllocationHandler(svc *allocation.Service, store SnapshotStore, cache *redis.Cache, log *logger.Logger) *AllocationHandler {
	return &AllocationHandler{
		service: svc,
		store:   store,
		cache:   cache,
		logger:  log,
	}
}

// NormalizeRequest is the raw normalize call payload. All weights are basis
// points.
type NormalizeRequest struct {
	RawWeights []uint64 `json:"raw_weights"`
	MinWeights []uint64 `json:"min_weights"`
	MaxWeights []uint64 `json:"max_weights"`
	Active     []bool   `json:"active"`
	Target     uint64   `json:"target"`
}

// NormalizeResponse carries the normalized weights and the re-checked sum.
type NormalizeResponse struct {
	FinalWeights []uint64 `json:"final_weights"`
	TotalBps     uint64   `json:"total_bps"`
	Target       uint64   `json:"target"`
	OnTarget     bool     `json:"on_target"`
}

// Normalize handles POST /api/allocations/normalize: a stateless call into
// the core normalizer. Input mismatches are caller bugs and map to 400;
// an off-target result is a 200 with on_target=false.
func (h *AllocationHandler) Normalize(w http.ResponseWriter, r *http.Request) {
	var req NormalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	final, err := normalizer.Normalize(req.RawWeights, req.MinWeights, req.MaxWeights, req.Active, req.Target)
	if err != nil {
		if errors.Is(err, normalizer.ErrInputMismatch) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.WithError(err).Error("Normalize failed")
		respondError(w, http.StatusInternalServerError, "normalize failed")
		return
	}

	total := normalizer.Sum(final)
	respondJSON(w, http.StatusOK, NormalizeResponse{
		FinalWeights: final,
		TotalBps:     total,
		Target:       req.Target,
		OnTarget:     total == req.Target,
	})
}

// RebalanceResponse wraps a computed allocation with its persistence status.
type RebalanceResponse struct {
	Allocation *allocation.Allocation `json:"allocation"`
	Persisted  bool                   `json:"persisted"`
}

// Rebalance handles POST /api/allocations/rebalance: runs the configured
// strategy end to end. On-target results are persisted and cached; off-target
// results come back flagged and uncommitted.
func (h *AllocationHandler) Rebalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	alloc, err := h.service.Rebalance(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Rebalance failed")
		respondError(w, http.StatusInternalServerError, "rebalance failed")
		return
	}

	resp := RebalanceResponse{Allocation: alloc}

	if alloc.OnTarget && h.store != nil {
		if err := h.store.Save(ctx, alloc); err != nil {
			h.logger.WithError(err).Error("Failed to persist allocation")
			respondError(w, http.StatusInternalServerError, "persist failed")
			return
		}
		resp.Persisted = true

		if h.cache != nil {
			key := redis.LatestAllocationKey(alloc.StrategyID)
			if err := h.cache.Set(ctx, key, alloc, redis.TTLAllocation); err != nil {
				h.logger.WithError(err).Warn("Failed to cache allocation")
			}
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// Latest handles GET /api/allocations/latest: cache read-through to the
// newest persisted snapshot.
func (h *AllocationHandler) Latest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	strategyID := h.service.StrategyID()

	if h.cache != nil {
		var cached allocation.Allocation
		found, err := h.cache.Get(ctx, redis.LatestAllocationKey(strategyID), &cached)
		if err != nil {
			h.logger.WithError(err).Warn("Cache read failed")
		}
		if found {
			respondJSON(w, http.StatusOK, &cached)
			return
		}
	}

	if h.store == nil {
		respondError(w, http.StatusNotFound, "no snapshot store configured")
		return
	}

	alloc, err := h.store.GetLatest(ctx, strategyID)
	if err != nil {
		if errors.Is(err, allocation.ErrNoSnapshot) {
			respondError(w, http.StatusNotFound, "no allocation snapshot")
			return
		}
		h.logger.WithError(err).Error("Failed to load latest allocation")
		respondError(w, http.StatusInternalServerError, "load failed")
		return
	}

	if h.cache != nil {
		key := redis.LatestAllocationKey(strategyID)
		if err := h.cache.Set(ctx, key, alloc, redis.TTLAllocation); err != nil {
			h.logger.WithError(err).Warn("Failed to cache allocation")
		}
	}

	respondJSON(w, http.StatusOK, alloc)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
