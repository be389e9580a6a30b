package model

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/demandcast/backend/internal/contracts"
	"github.com/demandcast/backend/internal/features"
	"github.com/demandcast/backend/pkg/logger"
)

var (
	// ErrNotReady is returned by Predict before any artifact is
	// trained or loaded.
	ErrNotReady = errors.New("model not calibrated yet")
	// ErrInsufficientData is returned by Calibrate when a partition is
	// left empty after feature engineering.
	ErrInsufficientData = errors.New("not enough history to calibrate")
)

// Model is the serving-side forecast model. Predictions read the current
// artifact through an atomic pointer, so scoring keeps working while a
// calibration runs; the swap at the end of a calibration is atomic.
type Model struct {
	store   Store
	builder *features.Builder
	log     *logger.Logger

	// Serializes calibrations; Predict never takes it.
	calMu   sync.Mutex
	current atomic.Pointer[Artifact]
}

// New creates a model backed by the given artifact store.
func New(store Store, builder *features.Builder, log *logger.Logger) *Model {
	return &Model{
		store:   store,
		builder: builder,
		log:     log.WithField("component", "model"),
	}
}

// Load restores the persisted artifact if one exists. A missing artifact
// is not an error; the model just stays not ready.
func (m *Model) Load(ctx context.Context) error {
	a, err := m.store.Load(ctx)
	if errors.Is(err, ErrArtifactNotFound) {
		m.log.Info("no persisted model artifact, starting cold")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}

	m.current.Store(a)
	m.log.WithFields(map[string]interface{}{
		"trained_at": a.TrainedAt,
		"trees":      len(a.Trees),
		"items":      len(a.Encoder.Items),
	}).Info("model artifact restored")
	return nil
}

// Ready reports whether a trained artifact is available.
func (m *Model) Ready() bool {
	return m.current.Load() != nil
}

// TrainedAt returns the training time of the current artifact, or zero.
func (m *Model) TrainedAt() time.Time {
	if a := m.current.Load(); a != nil {
		return a.TrainedAt
	}
	return time.Time{}
}

// Predict scores the feature vectors with the current artifact. Output
// order matches input order.
func (m *Model) Predict(vectors []contracts.FeatureVector) ([]float64, error) {
	a := m.current.Load()
	if a == nil {
		return nil, ErrNotReady
	}
	return a.predict(vectors), nil
}

// Calibrate retrains the model: records are split chronologically at the
// cutoff (records on the cutoff date train), features are engineered per
// partition so neither side sees the other, the ensemble is fitted on
// the training side and evaluated on the holdout. On success the new
// artifact replaces the current one and is persisted.
func (m *Model) Calibrate(ctx context.Context, records []contracts.SalesRecord, hp contracts.Hyperparameters, cutoff time.Time) (*contracts.CalibrationReport, error) {
	m.calMu.Lock()
	defer m.calMu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var trainRecs, holdoutRecs []contracts.SalesRecord
	for _, rec := range records {
		if rec.Date.Before(cutoff) {
			trainRecs = append(trainRecs, rec)
		} else {
			holdoutRecs = append(holdoutRecs, rec)
		}
	}

	train := m.builder.Build(trainRecs)
	holdout := m.builder.Build(holdoutRecs)
	if len(train.Vectors) == 0 || len(holdout.Vectors) == 0 {
		return nil, fmt.Errorf("%w: %d training and %d holdout vectors (cutoff %s)",
			ErrInsufficientData, len(train.Vectors), len(holdout.Vectors), cutoff.Format("2006-01-02"))
	}

	m.log.WithFields(map[string]interface{}{
		"train_vectors":   len(train.Vectors),
		"holdout_vectors": len(holdout.Vectors),
		"cutoff":          cutoff.Format("2006-01-02"),
		"trees":           hp.Trees,
	}).Info("calibration started")
	startedAt := time.Now()

	encoder := NewEncoder(train.Vectors)
	rows := encoder.Encode(train.Vectors)
	target := make([]float64, len(train.Vectors))
	for i, fv := range train.Vectors {
		target[i] = fv.QuantitySold
	}

	trees, base, gains := trainBoosting(rows, target, hp)

	artifact := &Artifact{
		Version:     artifactVersion,
		TrainedAt:   time.Now().UTC(),
		Hyperparams: hp,
		Encoder:     encoder,
		Base:        base,
		Shrinkage:   hp.LearningRate,
		Trees:       trees,
		Importance:  rankImportance(gains, encoder.FeatureNames()),
	}

	predicted := artifact.predict(holdout.Vectors)
	actual := make([]float64, len(holdout.Vectors))
	for i, fv := range holdout.Vectors {
		actual[i] = fv.QuantitySold
	}

	report := &contracts.CalibrationReport{
		Metrics:     computeMetrics(actual, predicted),
		Importance:  artifact.Importance,
		Series:      dailySeries(holdout.Vectors, actual, predicted),
		TrainRows:   len(train.Vectors),
		HoldoutRows: len(holdout.Vectors),
		TrainedAt:   artifact.TrainedAt,
	}
	if n := len(report.Series); n > 0 {
		report.HoldoutFrom, _ = time.Parse("2006-01-02", report.Series[0].Date)
		report.HoldoutTo, _ = time.Parse("2006-01-02", report.Series[n-1].Date)
	}

	if err := m.store.Save(ctx, artifact); err != nil {
		return nil, fmt.Errorf("persist model: %w", err)
	}
	m.current.Store(artifact)

	m.log.WithFields(map[string]interface{}{
		"duration": time.Since(startedAt).String(),
		"mae":      report.Metrics.MAE,
		"wape":     report.Metrics.WAPE,
	}).Info("calibration complete")

	return report, nil
}
