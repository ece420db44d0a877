// Package strategyconfig loads and validates the YAML strategy file that
// defines the allocation universe: entries with their bounds and active
// flags, the target total, the weighting mode, and the rebalance schedule.
package strategyconfig

// Config is the full strategy definition.
type Config struct {
	Meta       Meta       `yaml:"meta" json:"meta"`
	Entries    []Entry    `yaml:"entries" json:"entries"`
	Allocation Allocation `yaml:"allocation" json:"allocation"`
	Schedule   Schedule   `yaml:"schedule" json:"schedule"`
}

// Meta identifies the strategy for audit stamping.
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
}

// Entry is one position in the allocation universe. All weights are basis
// points (1/10000). Score and WeightBps feed the score and fixed weighting
// modes respectively and are ignored by the others.
type Entry struct {
	Symbol    string `yaml:"symbol" json:"symbol"`
	MinBps    uint64 `yaml:"min_bps" json:"min_bps"`
	MaxBps    uint64 `yaml:"max_bps" json:"max_bps"`
	Active    bool   `yaml:"active" json:"active"`
	Score     uint64 `yaml:"score" json:"score"`
	WeightBps uint64 `yaml:"weight_bps" json:"weight_bps"`
}

// Allocation holds the normalization target and weighting mode.
type Allocation struct {
	TargetBps uint64 `yaml:"target_bps" json:"target_bps"`
	Mode      string `yaml:"mode" json:"mode"` // equal | fixed | score
}

// Schedule holds the rebalance cron expression (with seconds field).
type Schedule struct {
	Cron string `yaml:"cron" json:"cron"`
}

// Symbols returns entry symbols in order.
func (c *Config) Symbols() []string {
	out := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		out[i] = e.Symbol
	}
	return out
}

// MinBounds returns per-entry lower bounds as a parallel slice.
func (c *Config) MinBounds() []uint64 {
	out := make([]uint64, len(c.Entries))
	for i, e := range c.Entries {
		out[i] = e.MinBps
	}
	return out
}

// MaxBounds returns per-entry upper bounds as a parallel slice.
func (c *Config) MaxBounds() []uint64 {
	out := make([]uint64, len(c.Entries))
	for i, e := range c.Entries {
		out[i] = e.MaxBps
	}
	return out
}

// ActiveFlags returns per-entry active flags as a parallel slice.
func (c *Config) ActiveFlags() []bool {
	out := make([]bool, len(c.Entries))
	for i, e := range c.Entries {
		out[i] = e.Active
	}
	return out
}

// Scores returns per-entry scores as a parallel slice.
func (c *Config) Scores() []uint64 {
	out := make([]uint64, len(c.Entries))
	for i, e := range c.Entries {
		out[i] = e.Score
	}
	return out
}

// FixedWeights returns per-entry fixed weights as a parallel slice.
func (c *Config) FixedWeights() []uint64 {
	out := make([]uint64, len(c.Entries))
	for i, e := range c.Entries {
		out[i] = e.WeightBps
	}
	return out
}

// ActiveCount returns the number of active entries.
func (c *Config) ActiveCount() int {
	n := 0
	for _, e := range c.Entries {
		if e.Active {
			n++
		}
	}
	return n
}
