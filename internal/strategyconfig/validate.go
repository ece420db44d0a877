package strategyconfig

import (
	"fmt"
)

// ValidationError reports a failed constraint; loading stops on the first one.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning reports a recommended-but-not-required constraint violation.
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints. The per-entry min <= max check
// lives here, at the config boundary: the normalizer assumes it and does not
// re-validate at runtime.
func Validate(cfg *Config) error {
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	if len(cfg.Entries) == 0 {
		return ValidationError{"entries", "must not be empty"}
	}

	a := cfg.Allocation
	if a.TargetBps == 0 {
		return ValidationError{"allocation.target_bps", "must be > 0"}
	}
	switch a.Mode {
	case "equal", "fixed", "score":
	default:
		return ValidationError{"allocation.mode", fmt.Sprintf("unknown mode %q", a.Mode)}
	}

	seen := make(map[string]bool, len(cfg.Entries))
	for i, e := range cfg.Entries {
		field := func(name string) string {
			return fmt.Sprintf("entries[%d].%s", i, name)
		}

		if e.Symbol == "" {
			return ValidationError{field("symbol"), "required"}
		}
		if seen[e.Symbol] {
			return ValidationError{field("symbol"), fmt.Sprintf("duplicate symbol %q", e.Symbol)}
		}
		seen[e.Symbol] = true

		if e.MinBps > e.MaxBps {
			return ValidationError{field("min_bps"), fmt.Sprintf("min_bps=%d > max_bps=%d", e.MinBps, e.MaxBps)}
		}
		if e.MaxBps > a.TargetBps {
			return ValidationError{field("max_bps"), fmt.Sprintf("max_bps=%d exceeds target_bps=%d", e.MaxBps, a.TargetBps)}
		}
		if e.WeightBps > a.TargetBps {
			return ValidationError{field("weight_bps"), fmt.Sprintf("weight_bps=%d exceeds target_bps=%d", e.WeightBps, a.TargetBps)}
		}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal). An unreachable target is a
// legal configuration — the normalizer returns a best-effort result and the
// service refuses to commit it — but it is almost never what the operator
// meant, so flag it at load time.
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	var minSum, maxSum uint64
	for _, e := range cfg.Entries {
		if !e.Active {
			continue
		}
		minSum += e.MinBps
		maxSum += e.MaxBps
	}

	target := cfg.Allocation.TargetBps
	if minSum > target {
		warnings = append(warnings, Warning{
			Code:    "FLOORS_EXCEED_TARGET",
			Message: fmt.Sprintf("active floors sum to %d bps, above target %d: every allocation will come back off-target", minSum, target),
		})
	}
	if maxSum < target {
		warnings = append(warnings, Warning{
			Code:    "CAPS_BELOW_TARGET",
			Message: fmt.Sprintf("active caps sum to %d bps, below target %d: every allocation will come back off-target", maxSum, target),
		})
	}

	if cfg.ActiveCount() == 0 {
		warnings = append(warnings, Warning{
			Code:    "NO_ACTIVE_ENTRIES",
			Message: "no entry is active; allocations will be all zero",
		})
	}

	return warnings
}
