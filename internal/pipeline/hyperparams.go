package pipeline

import (
	"fmt"

	"github.com/demandcast/backend/internal/contracts"
)

// Safe training ranges enforced before any calibration runs.
const (
	MinTrees = 50
	MaxTrees = 2000

	MaxLearningRate = 0.3

	MinTreeDepth = 1
	MaxTreeDepth = 15

	MinSampleFraction = 0.5
)

// HyperparameterError reports a single out-of-range training knob.
type HyperparameterError struct {
	Field   string
	Message string
}

func (e *HyperparameterError) Error() string {
	return fmt.Sprintf("hyperparameter %s: %s", e.Field, e.Message)
}

// ValidateHyperparameters rejects configurations outside the safe
// training ranges. The first violation found is returned.
func ValidateHyperparameters(hp contracts.Hyperparameters) error {
	if hp.Trees < MinTrees || hp.Trees > MaxTrees {
		return &HyperparameterError{"n_estimators",
			fmt.Sprintf("must be between %d and %d, got %d", MinTrees, MaxTrees, hp.Trees)}
	}
	if hp.LearningRate <= 0 || hp.LearningRate > MaxLearningRate {
		return &HyperparameterError{"learning_rate",
			fmt.Sprintf("must be in (0, %g], got %g", MaxLearningRate, hp.LearningRate)}
	}
	if hp.MaxDepth < MinTreeDepth || hp.MaxDepth > MaxTreeDepth {
		return &HyperparameterError{"max_depth",
			fmt.Sprintf("must be between %d and %d, got %d", MinTreeDepth, MaxTreeDepth, hp.MaxDepth)}
	}
	if hp.Subsample < MinSampleFraction || hp.Subsample > 1 {
		return &HyperparameterError{"subsample",
			fmt.Sprintf("must be in [%g, 1], got %g", MinSampleFraction, hp.Subsample)}
	}
	if hp.ColsampleTree < MinSampleFraction || hp.ColsampleTree > 1 {
		return &HyperparameterError{"colsample_bytree",
			fmt.Sprintf("must be in [%g, 1], got %g", MinSampleFraction, hp.ColsampleTree)}
	}
	if hp.RegLambda < 0 {
		return &HyperparameterError{"reg_lambda",
			fmt.Sprintf("must be non-negative, got %g", hp.RegLambda)}
	}
	if hp.RegAlpha < 0 {
		return &HyperparameterError{"reg_alpha",
			fmt.Sprintf("must be non-negative, got %g", hp.RegAlpha)}
	}
	return nil
}
