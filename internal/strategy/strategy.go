// Package strategy produces raw target weights for the normalizer. Producers
// never enforce bounds themselves; they only decide how the target splits
// across active entries, and the normalizer makes the result enforceable.
package strategy

import (
	"fmt"
)

// Mode identifies a raw-weight producer.
type Mode string

const (
	ModeEqual Mode = "equal"
	ModeFixed Mode = "fixed"
	ModeScore Mode = "score"
)

// Producer computes raw per-entry weights in basis points. The slice is
// parallel to the entry universe; inactive entries may receive any value,
// since the normalizer zeroes them.
type Producer interface {
	RawWeights(active []bool, target uint64) ([]uint64, error)
}

// EqualWeight splits the target evenly across active entries. Integer
// division leaves a remainder of at most len(active)-1 bps, handed out one
// bps at a time to the lowest active indices so the raw sum already hits the
// target.
type EqualWeight struct{}

func (EqualWeight) RawWeights(active []bool, target uint64) ([]uint64, error) {
	raw := make([]uint64, len(active))

	var count uint64
	for _, a := range active {
		if a {
			count++
		}
	}
	if count == 0 {
		return raw, nil
	}

	share := target / count
	rem := target % count
	for i, a := range active {
		if !a {
			continue
		}
		raw[i] = share
		if rem > 0 {
			raw[i]++
			rem--
		}
	}

	return raw, nil
}

// FixedSplit passes caller-supplied basis points through unchanged.
type FixedSplit struct {
	Weights []uint64
}

func (f FixedSplit) RawWeights(active []bool, target uint64) ([]uint64, error) {
	if len(f.Weights) != len(active) {
		return nil, fmt.Errorf("fixed split: %d weights for %d entries", len(f.Weights), len(active))
	}
	raw := make([]uint64, len(f.Weights))
	copy(raw, f.Weights)
	return raw, nil
}

// ScoreBased assigns weight proportional to non-negative entry scores, scaled
// to the target in integer arithmetic. Rounding residue stays with the lowest
// scored indices' truncation; the normalizer closes the gap.
type ScoreBased struct {
	Scores []uint64
}

func (s ScoreBased) RawWeights(active []bool, target uint64) ([]uint64, error) {
	if len(s.Scores) != len(active) {
		return nil, fmt.Errorf("score based: %d scores for %d entries", len(s.Scores), len(active))
	}

	raw := make([]uint64, len(s.Scores))

	var totalScore uint64
	for i, a := range active {
		if a {
			totalScore += s.Scores[i]
		}
	}
	if totalScore == 0 {
		// No usable scores; fall back to an even split.
		return EqualWeight{}.RawWeights(active, target)
	}

	for i, a := range active {
		if !a {
			continue
		}
		raw[i] = target * s.Scores[i] / totalScore
	}

	return raw, nil
}

// ForMode returns the producer for a configured mode. Fixed and score modes
// take their per-entry inputs from the strategy config.
func ForMode(mode Mode, fixed, scores []uint64) (Producer, error) {
	switch mode {
	case ModeEqual:
		return EqualWeight{}, nil
	case ModeFixed:
		return FixedSplit{Weights: fixed}, nil
	case ModeScore:
		return ScoreBased{Scores: scores}, nil
	default:
		return nil, fmt.Errorf("unknown weighting mode %q", mode)
	}
}
