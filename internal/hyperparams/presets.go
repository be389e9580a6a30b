package hyperparams

import (
	"fmt"
	"sort"

	"github.com/demandcast/backend/internal/contracts"
)

// Presets returns the named built-in training configurations, keyed by
// preset name.
func Presets() map[string]contracts.Hyperparameters {
	return map[string]contracts.Hyperparameters{
		"default": contracts.DefaultHyperparameters(),
		"high_accuracy": {
			Trees:         1000,
			LearningRate:  0.01,
			MaxDepth:      8,
			Subsample:     0.9,
			ColsampleTree: 0.9,
			RegLambda:     0.5,
			RegAlpha:      0.3,
			Seed:          42,
			Name:          "high_accuracy",
			Description:   "slow but thorough, for overnight recalibration",
		},
		"fast_training": {
			Trees:         200,
			LearningRate:  0.1,
			MaxDepth:      4,
			Subsample:     0.7,
			ColsampleTree: 0.7,
			RegLambda:     2.0,
			RegAlpha:      1.0,
			Seed:          42,
			Name:          "fast_training",
			Description:   "quick turnaround for experimentation",
		},
		"balanced": {
			Trees:         500,
			LearningRate:  0.05,
			MaxDepth:      6,
			Subsample:     0.85,
			ColsampleTree: 0.85,
			RegLambda:     1.0,
			RegAlpha:      0.5,
			Seed:          42,
			Name:          "balanced",
			Description:   "middle ground between speed and accuracy",
		},
	}
}

// Preset resolves a preset by name.
func Preset(name string) (contracts.Hyperparameters, error) {
	presets := Presets()
	hp, ok := presets[name]
	if !ok {
		names := make([]string, 0, len(presets))
		for n := range presets {
			names = append(names, n)
		}
		sort.Strings(names)
		return contracts.Hyperparameters{}, fmt.Errorf("unknown preset %q (available: %v)", name, names)
	}
	return hp, nil
}
