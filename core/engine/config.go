package engine

import (
	"fmt"

	"github.com/ktakeda47/jikanwari/core/optimizer"
)

// Config is the plain settings record one generation run consumes. The
// zero value plus SetDefaults matches the deployed tuning.
type Config struct {
	MaxIterations        int     `json:"max_iterations"`
	SwapsPerIter         int     `json:"swaps_per_iter"`
	Patience             int     `json:"patience"`
	KickSwaps            int     `json:"kick_swaps"`
	Temperature          float64 `json:"temperature"`
	RandomnessLevel      float64 `json:"randomness_level"`
	AllowSoftConstraints bool    `json:"allow_soft_constraints"`
	StartEmpty           bool    `json:"start_empty"`
	Seed                 int64   `json:"seed"`
}

// SetDefaults fills unset numeric knobs from the optimizer's deployed
// tuning. Seed zero stays zero: the engine draws a fresh seed per run.
func (c *Config) SetDefaults() {
	def := optimizer.DefaultConfig()
	if c.MaxIterations == 0 {
		c.MaxIterations = def.MaxIterations
	}
	if c.SwapsPerIter == 0 {
		c.SwapsPerIter = def.SwapsPerIter
	}
	if c.Patience == 0 {
		c.Patience = def.Patience
	}
	if c.KickSwaps == 0 {
		c.KickSwaps = def.KickSwaps
	}
	if c.Temperature == 0 {
		c.Temperature = def.Temperature
	}
	if c.RandomnessLevel == 0 {
		c.RandomnessLevel = def.Randomness
	}
}

// Validate rejects settings outside their working ranges.
func (c *Config) Validate() error {
	if c.MaxIterations < 0 {
		return fmt.Errorf("engine: max_iterations must not be negative, got %d", c.MaxIterations)
	}
	if c.SwapsPerIter < 0 {
		return fmt.Errorf("engine: swaps_per_iter must not be negative, got %d", c.SwapsPerIter)
	}
	if c.Patience < 0 {
		return fmt.Errorf("engine: patience must not be negative, got %d", c.Patience)
	}
	if c.KickSwaps < 0 {
		return fmt.Errorf("engine: kick_swaps must not be negative, got %d", c.KickSwaps)
	}
	if c.Temperature < 0 {
		return fmt.Errorf("engine: temperature must not be negative, got %v", c.Temperature)
	}
	if c.RandomnessLevel < 0 || c.RandomnessLevel > 1 {
		return fmt.Errorf("engine: randomness_level must lie in [0, 1], got %v", c.RandomnessLevel)
	}
	return nil
}

// optimizerConfig maps the run settings onto the swap search knobs.
func (c Config) optimizerConfig() optimizer.Config {
	return optimizer.Config{
		MaxIterations: c.MaxIterations,
		SwapsPerIter:  c.SwapsPerIter,
		Patience:      c.Patience,
		KickSwaps:     c.KickSwaps,
		Temperature:   c.Temperature,
		Randomness:    c.RandomnessLevel,
	}
}
