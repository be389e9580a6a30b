package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/demandcast/backend/internal/contracts"
	"github.com/demandcast/backend/internal/hyperparams"
	"github.com/demandcast/backend/internal/pipeline"
	"github.com/demandcast/backend/pkg/logger"
)

// HyperparamsHandler manages saved training configurations.
type HyperparamsHandler struct {
	configs *hyperparams.Repository
	logger  *logger.Logger
}

// NewHyperparamsHandler creates a hyperparameter handler.
func NewHyperparamsHandler(configs *hyperparams.Repository, log *logger.Logger) *HyperparamsHandler {
	return &HyperparamsHandler{configs: configs, logger: log}
}

// GetActive returns the active configuration, or the defaults when none
// is saved.
// GET /api/hyperparams
func (h *HyperparamsHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	if h.configs == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"source": "defaults",
			"params": contracts.DefaultHyperparameters(),
		})
		return
	}

	saved, err := h.configs.Active(r.Context())
	if errors.Is(err, hyperparams.ErrNoActiveConfig) {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"source": "defaults",
			"params": contracts.DefaultHyperparameters(),
		})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to load active hyperparameters")
		respondError(w, http.StatusInternalServerError, "failed to load configuration")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"source": "saved",
		"id":     saved.ID,
		"params": saved.Params,
	})
}

// Update validates and saves a new configuration, making it active.
// PUT /api/hyperparams
func (h *HyperparamsHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h.configs == nil {
		respondError(w, http.StatusServiceUnavailable, "saved configurations require a database")
		return
	}

	hp := contracts.DefaultHyperparameters()
	if err := json.NewDecoder(r.Body).Decode(&hp); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if hp.Name == "" || hp.Name == "default" {
		hp.Name = "custom"
	}

	if err := pipeline.ValidateHyperparameters(hp); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := h.configs.Save(r.Context(), hp)
	if err != nil {
		h.logger.WithError(err).Error("Failed to save hyperparameters")
		respondError(w, http.StatusInternalServerError, "failed to save configuration")
		return
	}

	respondJSON(w, http.StatusOK, saved)
}

// Reset saves the default configuration as active.
// POST /api/hyperparams/reset
func (h *HyperparamsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if h.configs == nil {
		respondError(w, http.StatusServiceUnavailable, "saved configurations require a database")
		return
	}

	saved, err := h.configs.Save(r.Context(), contracts.DefaultHyperparameters())
	if err != nil {
		h.logger.WithError(err).Error("Failed to reset hyperparameters")
		respondError(w, http.StatusInternalServerError, "failed to reset configuration")
		return
	}

	respondJSON(w, http.StatusOK, saved)
}

// ListPresets returns the built-in presets.
// GET /api/hyperparams/presets
func (h *HyperparamsHandler) ListPresets(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, hyperparams.Presets())
}

// History lists recently saved configurations.
// GET /api/hyperparams/history?limit=20
func (h *HyperparamsHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.configs == nil {
		respondError(w, http.StatusServiceUnavailable, "saved configurations require a database")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	configs, err := h.configs.List(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list hyperparameter configs")
		respondError(w, http.StatusInternalServerError, "failed to list configurations")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(configs),
		"configs": configs,
	})
}
