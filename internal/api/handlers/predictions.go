package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/demandcast/backend/internal/jobs"
	"github.com/demandcast/backend/internal/model"
	"github.com/demandcast/backend/internal/pipeline"
	"github.com/demandcast/backend/pkg/logger"
)

// PredictionHandler runs the forecasting pipeline and serves past runs.
type PredictionHandler struct {
	orchestrator *pipeline.Orchestrator
	runs         *jobs.Repository
	logger       *logger.Logger
}

// NewPredictionHandler creates a prediction handler. runs may be nil
// when the service runs without a database; history endpoints then
// report 503.
func NewPredictionHandler(orch *pipeline.Orchestrator, runs *jobs.Repository, log *logger.Logger) *PredictionHandler {
	return &PredictionHandler{orchestrator: orch, runs: runs, logger: log}
}

// RunPrediction validates an uploaded CSV, scores it, and returns the
// per-item inventory risk report.
// POST /api/predictions/run?item_code=&season=
func (h *PredictionHandler) RunPrediction(w http.ResponseWriter, r *http.Request) {
	ds, err := readDataset(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.orchestrator.Predict(r.Context(), ds, filterFromQuery(r))

	var vErr *pipeline.ValidationFailedError
	switch {
	case errors.As(err, &vErr):
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  "dataset rejected",
			"issues": vErr.Result.Issues,
		})
		return
	case errors.Is(err, model.ErrNotReady):
		respondError(w, http.StatusConflict, "model is not calibrated yet, train it first")
		return
	case err != nil:
		h.logger.WithError(err).Error("Prediction run failed")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var runID int64
	if h.runs != nil {
		runID, err = h.runs.SaveRun(r.Context(), res)
		if err != nil {
			// The run itself succeeded; losing history is not fatal.
			h.logger.WithError(err).Error("Failed to persist prediction run")
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"run_id": runID,
		"result": res,
	})
}

// RecentRuns lists the latest persisted runs.
// GET /api/predictions/recent?limit=10
func (h *PredictionHandler) RecentRuns(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		respondError(w, http.StatusServiceUnavailable, "run history requires a database")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := h.runs.RecentRuns(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list prediction runs")
		respondError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(runs),
		"runs":  runs,
	})
}

// RunItems returns the per-item results of one persisted run.
// GET /api/predictions/runs/{id}/items
func (h *PredictionHandler) RunItems(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		respondError(w, http.StatusServiceUnavailable, "run history requires a database")
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid run id")
		return
	}

	items, err := h.runs.RunItems(r.Context(), id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load run items")
		respondError(w, http.StatusInternalServerError, "failed to load run items")
		return
	}
	if len(items) == 0 {
		respondError(w, http.StatusNotFound, "run not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"run_id": id,
		"items":  items,
	})
}
