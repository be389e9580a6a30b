package contracts

import (
	"context"
	"time"
)

// Hyperparameters are the caller-supplied knobs of the gradient-boosted
// forecast model. Safe ranges are enforced by the pipeline orchestrator,
// not by the model itself.
type Hyperparameters struct {
	Trees         int     `json:"n_estimators"`
	LearningRate  float64 `json:"learning_rate"`
	MaxDepth      int     `json:"max_depth"`
	Subsample     float64 `json:"subsample"`
	ColsampleTree float64 `json:"colsample_bytree"`
	RegLambda     float64 `json:"reg_lambda"` // L2
	RegAlpha      float64 `json:"reg_alpha"`  // L1
	Seed          int64   `json:"random_state"`

	Name        string `json:"config_name,omitempty"`
	Description string `json:"description,omitempty"`
}

// DefaultHyperparameters returns the balanced default configuration.
func DefaultHyperparameters() Hyperparameters {
	return Hyperparameters{
		Trees:         500,
		LearningRate:  0.03,
		MaxDepth:      6,
		Subsample:     0.85,
		ColsampleTree: 0.85,
		RegLambda:     1.0,
		RegAlpha:      0.5,
		Seed:          42,
		Name:          "default",
		Description:   "balanced default configuration",
	}
}

// ModelMetrics are the holdout accuracy metrics of a calibration.
// Percentage metrics are expressed in percent (0-100 scale).
type ModelMetrics struct {
	MAE       float64 `json:"mae"`
	MAPE      float64 `json:"mape"`
	WAPE      float64 `json:"wape"`
	SMAPE     float64 `json:"smape"`
	RMSE      float64 `json:"rmse"`
	Bias      float64 `json:"bias"`      // signed mean percentage error
	Precision float64 `json:"precision"` // 100 - MAPE
	R2        float64 `json:"r2_score"`
}

// FeatureImportance ranks one model input by its training gain.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
	Rank       int     `json:"rank"`
}

// DailyAggregate is one point of the real-vs-predicted holdout series:
// the sum of actual and predicted quantity for one calendar day.
type DailyAggregate struct {
	Date      string  `json:"date"` // YYYY-MM-DD
	Actual    float64 `json:"actual"`
	Predicted float64 `json:"predicted"`
}

// CalibrationReport summarizes a completed calibration.
type CalibrationReport struct {
	Metrics     ModelMetrics        `json:"metrics"`
	Importance  []FeatureImportance `json:"feature_importance"`
	Series      []DailyAggregate    `json:"plot_data"`
	TrainRows   int                 `json:"train_rows"`
	HoldoutRows int                 `json:"holdout_rows"`
	HoldoutFrom time.Time           `json:"holdout_from"`
	HoldoutTo   time.Time           `json:"holdout_to"`
	TrainedAt   time.Time           `json:"trained_at"`
}

// ForecastModel is the opaque trained capability: it maps feature vectors
// to predicted demand quantities and can recalibrate itself against
// historical records. Predict before any calibration fails with the model
// package's not-ready error. Predict is safe for concurrent use; Calibrate
// swaps the trained artifact atomically.
type ForecastModel interface {
	Predict(features []FeatureVector) ([]float64, error)
	Calibrate(ctx context.Context, records []SalesRecord, hp Hyperparameters, cutoff time.Time) (*CalibrationReport, error)
}
