// Package normalizer converts raw target allocations into an enforceable
// distribution: per-entry bounds respected, disabled entries zeroed, and the
// total summing exactly to a fixed target expressed in basis points.
package normalizer

import (
	"errors"
	"fmt"
)

// CanonicalTarget is 100.00% in basis points (1/10000).
const CanonicalTarget uint64 = 10000

// ErrInputMismatch indicates a caller-side configuration bug: the input
// sequences disagree in length, or the target is zero. Never retried.
var ErrInputMismatch = errors.New("input mismatch")

// Normalize maps raw per-entry weights to final weights such that:
//   - inactive entries end at 0
//   - active entries stay within [min[i], max[i]] whenever reachable
//   - the total equals target whenever sum(min_active) <= target <= sum(max_active)
//
// All weights are unsigned basis points. When the bounds make the target
// unreachable, Normalize returns a best-effort clamped result; an off-target
// sum is a return value, not an error. Callers must re-verify
// Sum(result) == target before acting on the allocation.
//
// The computation is pure and deterministic: no shared state, safe for
// concurrent use from multiple goroutines.
func Normalize(raw, min, max []uint64, active []bool, target uint64) ([]uint64, error) {
	n := len(raw)
	if len(min) != n || len(max) != n || len(active) != n {
		return nil, fmt.Errorf("%w: lengths raw=%d min=%d max=%d active=%d",
			ErrInputMismatch, n, len(min), len(max), len(active))
	}
	if target == 0 {
		return nil, fmt.Errorf("%w: target must be nonzero", ErrInputMismatch)
	}

	// Phase 1: clamp into bounds, zero the inactive entries.
	final := make([]uint64, n)
	var total uint64
	for i := 0; i < n; i++ {
		if !active[i] {
			continue
		}
		w := raw[i]
		if w < min[i] {
			w = min[i]
		}
		if w > max[i] {
			w = max[i]
		}
		final[i] = w
		total += w
	}
	if total == target {
		return final, nil
	}

	// Phase 2: push the residual into the largest active entry first, then
	// sweep the rest in index order.
	if total < target {
		rebalanceUp(final, max, active, target-total)
	} else {
		rebalanceDown(final, min, active, total-target)
	}

	// Phase 3: rounding-residue fixup. A single targeted adjustment, applied
	// only when one entry's headroom covers the whole shortfall; otherwise the
	// off-target result stands.
	total = Sum(final)
	if total < target {
		correctUp(final, max, active, target-total)
	} else if total > target {
		correctDown(final, min, active, total-target)
	}

	return final, nil
}

// rebalanceUp distributes delta across active entries up to their max bounds.
func rebalanceUp(final, max []uint64, active []bool, delta uint64) {
	pivot := largestActive(final, active)
	if pivot < 0 {
		return
	}
	delta = absorbUp(final, max, pivot, delta)
	for i := 0; i < len(final) && delta > 0; i++ {
		if i == pivot || !active[i] {
			continue
		}
		delta = absorbUp(final, max, i, delta)
	}
}

// rebalanceDown removes delta from active entries down to their min bounds.
func rebalanceDown(final, min []uint64, active []bool, delta uint64) {
	pivot := largestActive(final, active)
	if pivot < 0 {
		return
	}
	delta = absorbDown(final, min, pivot, delta)
	for i := 0; i < len(final) && delta > 0; i++ {
		if i == pivot || !active[i] {
			continue
		}
		delta = absorbDown(final, min, i, delta)
	}
}

// absorbUp adds up to delta to entry i, limited by its max headroom, and
// returns the unabsorbed remainder.
func absorbUp(final, max []uint64, i int, delta uint64) uint64 {
	if max[i] <= final[i] {
		return delta
	}
	room := max[i] - final[i]
	if room >= delta {
		final[i] += delta
		return 0
	}
	final[i] = max[i]
	return delta - room
}

// absorbDown removes up to delta from entry i, limited by its min headroom,
// and returns the unabsorbed remainder.
func absorbDown(final, min []uint64, i int, delta uint64) uint64 {
	if final[i] <= min[i] {
		return delta
	}
	room := final[i] - min[i]
	if room >= delta {
		final[i] -= delta
		return 0
	}
	final[i] = min[i]
	return delta - room
}

// correctUp applies the final single-entry fixup when the sum is short: the
// active entry with the greatest max headroom takes the whole shortfall, but
// only if its headroom fully covers it.
func correctUp(final, max []uint64, active []bool, shortfall uint64) {
	best := -1
	var room uint64
	for i := range final {
		if !active[i] || max[i] <= final[i] {
			continue
		}
		if r := max[i] - final[i]; best < 0 || r > room {
			best = i
			room = r
		}
	}
	if best >= 0 && room >= shortfall {
		final[best] += shortfall
	}
}

// correctDown is the removing counterpart of correctUp.
func correctDown(final, min []uint64, active []bool, excess uint64) {
	best := -1
	var room uint64
	for i := range final {
		if !active[i] || final[i] <= min[i] {
			continue
		}
		if r := final[i] - min[i]; best < 0 || r > room {
			best = i
			room = r
		}
	}
	if best >= 0 && room >= excess {
		final[best] -= excess
	}
}

// largestActive returns the index of the active entry with the largest
// current weight. Ties resolve to the lowest index: only a strictly greater
// weight displaces an earlier candidate. Returns -1 when no entry is active.
func largestActive(final []uint64, active []bool) int {
	best := -1
	var bestW uint64
	for i := range final {
		if !active[i] {
			continue
		}
		if best < 0 || final[i] > bestW {
			best = i
			bestW = final[i]
		}
	}
	return best
}

// Sum returns the total of a weight sequence in basis points.
func Sum(weights []uint64) uint64 {
	var total uint64
	for _, w := range weights {
		total += w
	}
	return total
}

// OnTarget reports whether a weight sequence sums exactly to target.
// Callers re-verify every normalized result with this before committing an
// allocation change.
func OnTarget(weights []uint64, target uint64) bool {
	return Sum(weights) == target
}
