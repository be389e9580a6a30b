package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/demandcast/backend/internal/contracts"
	"github.com/demandcast/backend/internal/dataset"
	"github.com/demandcast/backend/internal/features"
	"github.com/demandcast/backend/internal/inventory"
	"github.com/demandcast/backend/internal/validation"
	"github.com/demandcast/backend/pkg/logger"
)

// ValidationFailedError carries the full validation result when a
// dataset is rejected, so callers can relay every issue instead of the
// first one.
type ValidationFailedError struct {
	Result *contracts.ValidationResult
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("dataset rejected with %d validation errors",
		e.Result.Count(contracts.SeverityError))
}

// PredictResult is the outcome of a full prediction run.
type PredictResult struct {
	Items   []contracts.ItemDemandStats `json:"items"`
	Summary map[string]int              `json:"state_summary"`

	MeanDemand     float64 `json:"mean_predicted_demand"`
	MeanVolatility float64 `json:"mean_demand_volatility"`

	RowsInput    int       `json:"rows_input"`
	RowsFiltered int       `json:"rows_after_filter"`
	RowsFeatured int       `json:"rows_featured"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// Orchestrator wires the stages of the forecasting pipeline: validation,
// filtering, feature engineering, model scoring, and inventory risk
// aggregation.
type Orchestrator struct {
	validator  *validation.Validator
	builder    *features.Builder
	model      contracts.ForecastModel
	aggregator *inventory.Aggregator
	cutoff     time.Time
	log        *logger.Logger
}

// New creates an orchestrator. The cutoff is the chronological
// train/holdout split date used by Train.
func New(validator *validation.Validator, builder *features.Builder, model contracts.ForecastModel,
	aggregator *inventory.Aggregator, cutoff time.Time, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		validator:  validator,
		builder:    builder,
		model:      model,
		aggregator: aggregator,
		cutoff:     cutoff,
		log:        log.WithField("component", "pipeline"),
	}
}

// ValidateDataset runs the validation stage alone.
func (o *Orchestrator) ValidateDataset(ds *dataset.Dataset, strict bool) *contracts.ValidationResult {
	return o.validator.Validate(ds, strict)
}

// Predict runs the full pipeline on an accepted dataset: optional row
// filters, feature engineering, model scoring, and per-item aggregation.
func (o *Orchestrator) Predict(ctx context.Context, ds *dataset.Dataset, filter dataset.Filter) (*PredictResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := o.validator.Validate(ds, true)
	if !result.Accepted {
		return nil, &ValidationFailedError{Result: result}
	}

	filtered := filter.Apply(ds)
	conv := dataset.ToRecords(filtered)
	if conv.DroppedDates > 0 || conv.DroppedNumeric > 0 {
		o.log.WithFields(map[string]interface{}{
			"dropped_dates":   conv.DroppedDates,
			"dropped_numeric": conv.DroppedNumeric,
		}).Warn("rows dropped during record conversion")
	}

	built := o.builder.Build(conv.Records)
	if len(built.Vectors) == 0 {
		return nil, fmt.Errorf("no rows with enough history to score (%d rows in, %d dropped as warmup)",
			built.InputRows, built.DroppedRows)
	}

	predictions, err := o.model.Predict(built.Vectors)
	if err != nil {
		return nil, fmt.Errorf("score features: %w", err)
	}

	rows := make([]inventory.Row, len(built.Vectors))
	for i, fv := range built.Vectors {
		rows[i] = inventory.Row{
			ItemCode:     fv.ItemCode,
			Prediction:   predictions[i],
			QuantitySold: fv.QuantitySold,
			CurrentStock: fv.CurrentStock,
			LeadTimeDays: fv.LeadTimeDays,
		}
	}
	items := o.aggregator.Aggregate(rows)

	out := &PredictResult{
		Items:        items,
		Summary:      summarize(items),
		RowsInput:    ds.Len(),
		RowsFiltered: filtered.Len(),
		RowsFeatured: len(built.Vectors),
		GeneratedAt:  time.Now().UTC(),
	}
	for _, item := range items {
		out.MeanDemand += item.MeanDemand
		out.MeanVolatility += item.Volatility
	}
	if n := float64(len(items)); n > 0 {
		out.MeanDemand /= n
		out.MeanVolatility /= n
	}

	o.log.WithFields(map[string]interface{}{
		"items":    len(items),
		"rows_in":  out.RowsInput,
		"featured": out.RowsFeatured,
	}).Info("prediction run complete")

	return out, nil
}

// Train validates the dataset and hyperparameters and recalibrates the
// model on it.
func (o *Orchestrator) Train(ctx context.Context, ds *dataset.Dataset, hp contracts.Hyperparameters) (*contracts.CalibrationReport, error) {
	if err := ValidateHyperparameters(hp); err != nil {
		return nil, err
	}

	result := o.validator.Validate(ds, true)
	if !result.Accepted {
		return nil, &ValidationFailedError{Result: result}
	}

	conv := dataset.ToRecords(ds)
	report, err := o.model.Calibrate(ctx, conv.Records, hp, o.cutoff)
	if err != nil {
		return nil, fmt.Errorf("calibrate model: %w", err)
	}
	return report, nil
}

func summarize(items []contracts.ItemDemandStats) map[string]int {
	summary := map[string]int{
		string(contracts.StateStockoutRisk): 0,
		string(contracts.StateOverstock):    0,
		string(contracts.StateOK):           0,
	}
	for _, item := range items {
		summary[string(item.State)]++
	}
	return summary
}
