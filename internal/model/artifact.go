package model

import (
	"time"

	"github.com/demandcast/backend/internal/contracts"
)

// artifactVersion is bumped when the serialized layout changes in a way
// old binaries cannot read.
const artifactVersion = 1

// Artifact is a fully trained, serializable model: the encoder
// vocabulary, the tree ensemble, and the training provenance. An
// artifact is immutable once built.
type Artifact struct {
	Version     int                           `json:"version"`
	TrainedAt   time.Time                     `json:"trained_at"`
	Hyperparams contracts.Hyperparameters     `json:"hyperparameters"`
	Encoder     *Encoder                      `json:"encoder"`
	Base        float64                       `json:"base_prediction"`
	Shrinkage   float64                       `json:"learning_rate"`
	Trees       []*regTree                    `json:"trees"`
	Importance  []contracts.FeatureImportance `json:"feature_importance"`
}

// predictRow scores one encoded row through the full ensemble.
func (a *Artifact) predictRow(row []float64) float64 {
	out := a.Base
	for _, t := range a.Trees {
		out += a.Shrinkage * t.predict(row)
	}
	return out
}

// predict scores a batch of feature vectors, preserving input order.
func (a *Artifact) predict(vectors []contracts.FeatureVector) []float64 {
	out := make([]float64, len(vectors))
	for i, fv := range vectors {
		out[i] = a.predictRow(a.Encoder.EncodeRow(fv))
	}
	return out
}
