package handlers

import (
	"errors"
	"net/http"

	"github.com/demandcast/backend/internal/contracts"
	"github.com/demandcast/backend/internal/hyperparams"
	"github.com/demandcast/backend/internal/model"
	"github.com/demandcast/backend/internal/pipeline"
	"github.com/demandcast/backend/pkg/logger"
)

// ModelHandler exposes training and model status.
type ModelHandler struct {
	orchestrator *pipeline.Orchestrator
	model        *model.Model
	configs      *hyperparams.Repository
	logger       *logger.Logger
}

// NewModelHandler creates a model handler. configs may be nil when the
// service runs without a database.
func NewModelHandler(orch *pipeline.Orchestrator, m *model.Model, configs *hyperparams.Repository, log *logger.Logger) *ModelHandler {
	return &ModelHandler{orchestrator: orch, model: m, configs: configs, logger: log}
}

// Train recalibrates the model from an uploaded CSV. The hyperparameters
// come from the preset query parameter, falling back to the active saved
// configuration and then the defaults.
// POST /api/model/train?preset=high_accuracy
func (h *ModelHandler) Train(w http.ResponseWriter, r *http.Request) {
	ds, err := readDataset(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	hp, err := h.resolveParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.orchestrator.Train(r.Context(), ds, hp)

	var hpErr *pipeline.HyperparameterError
	var vErr *pipeline.ValidationFailedError
	switch {
	case errors.As(err, &hpErr):
		respondError(w, http.StatusBadRequest, hpErr.Error())
		return
	case errors.As(err, &vErr):
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  "dataset rejected",
			"issues": vErr.Result.Issues,
		})
		return
	case errors.Is(err, model.ErrInsufficientData):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		h.logger.WithError(err).Error("Training failed")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// Status reports whether a trained model is available.
// GET /api/model/status
func (h *ModelHandler) Status(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"ready": h.model.Ready(),
	}
	if trainedAt := h.model.TrainedAt(); !trainedAt.IsZero() {
		status["trained_at"] = trainedAt
	}
	respondJSON(w, http.StatusOK, status)
}

func (h *ModelHandler) resolveParams(r *http.Request) (contracts.Hyperparameters, error) {
	if preset := r.URL.Query().Get("preset"); preset != "" {
		return hyperparams.Preset(preset)
	}

	if h.configs != nil {
		saved, err := h.configs.Active(r.Context())
		if err == nil {
			return saved.Params, nil
		}
		if !errors.Is(err, hyperparams.ErrNoActiveConfig) {
			h.logger.WithError(err).Warn("Failed to load active hyperparameters, using defaults")
		}
	}

	return contracts.DefaultHyperparameters(), nil
}
