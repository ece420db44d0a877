package allocation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNoSnapshot indicates no allocation has been persisted for a strategy.
var ErrNoSnapshot = errors.New("no allocation snapshot")

// Repository persists committed allocation snapshots.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new allocation repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Save stores an allocation snapshot. Only on-target allocations may be
// saved; persisting an off-target split would let a caller act on it.
func (r *Repository) Save(ctx context.Context, alloc *Allocation) error {
	if !alloc.OnTarget {
		return fmt.Errorf("refusing to save off-target allocation: total=%d target=%d",
			alloc.TotalBps, alloc.TargetBps)
	}

	payload, err := json.Marshal(alloc.Entries)
	if err != nil {
		return fmt.Errorf("marshal entries: %w", err)
	}

	query := `
		INSERT INTO allocation_snapshots (
			strategy_id, config_hash, target_bps, total_bps, entries, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = r.pool.Exec(ctx, query,
		alloc.StrategyID, alloc.ConfigHash, alloc.TargetBps, alloc.TotalBps, payload, alloc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert allocation snapshot: %w", err)
	}

	return nil
}

// GetLatest returns the most recently persisted snapshot for a strategy.
func (r *Repository) GetLatest(ctx context.Context, strategyID string) (*Allocation, error) {
	query := `
		SELECT strategy_id, config_hash, target_bps, total_bps, entries, created_at
		FROM allocation_snapshots
		WHERE strategy_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	alloc := &Allocation{OnTarget: true}
	var payload []byte

	err := r.pool.QueryRow(ctx, query, strategyID).Scan(
		&alloc.StrategyID, &alloc.ConfigHash, &alloc.TargetBps, &alloc.TotalBps, &payload, &alloc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: strategy %s", ErrNoSnapshot, strategyID)
		}
		return nil, fmt.Errorf("query allocation snapshot: %w", err)
	}

	if err := json.Unmarshal(payload, &alloc.Entries); err != nil {
		return nil, fmt.Errorf("unmarshal entries: %w", err)
	}

	return alloc, nil
}

// History returns up to limit snapshots for a strategy, newest first.
func (r *Repository) History(ctx context.Context, strategyID string, limit int) ([]*Allocation, error) {
	query := `
		SELECT strategy_id, config_hash, target_bps, total_bps, entries, created_at
		FROM allocation_snapshots
		WHERE strategy_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, strategyID, limit)
	if err != nil {
		return nil, fmt.Errorf("query allocation history: %w", err)
	}
	defer rows.Close()

	var allocs []*Allocation
	for rows.Next() {
		alloc := &Allocation{OnTarget: true}
		var payload []byte
		if err := rows.Scan(
			&alloc.StrategyID, &alloc.ConfigHash, &alloc.TargetBps, &alloc.TotalBps, &payload, &alloc.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan allocation snapshot: %w", err)
		}
		if err := json.Unmarshal(payload, &alloc.Entries); err != nil {
			return nil, fmt.Errorf("unmarshal entries: %w", err)
		}
		allocs = append(allocs, alloc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate allocation snapshots: %w", err)
	}

	return allocs, nil
}
