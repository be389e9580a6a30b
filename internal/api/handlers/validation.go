package handlers

import (
	"net/http"

	"github.com/demandcast/backend/internal/contracts"
	"github.com/demandcast/backend/internal/pipeline"
	"github.com/demandcast/backend/pkg/logger"
)

// ValidationHandler exposes the dataset validation stage on its own, so
// collaborators can check an export before a full prediction run.
type ValidationHandler struct {
	orchestrator *pipeline.Orchestrator
	logger       *logger.Logger
}

// NewValidationHandler creates a validation handler.
func NewValidationHandler(orch *pipeline.Orchestrator, log *logger.Logger) *ValidationHandler {
	return &ValidationHandler{orchestrator: orch, logger: log}
}

// ValidateDataset validates an uploaded CSV.
// POST /api/data/validate
// Accepted datasets return 200; rejected ones return 422 with the full
// issue list either way.
func (h *ValidationHandler) ValidateDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := readDataset(r)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to read uploaded dataset")
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	strict := r.URL.Query().Get("strict") == "true"
	result := h.orchestrator.ValidateDataset(ds, strict)

	status := http.StatusOK
	if !result.Accepted {
		status = http.StatusUnprocessableEntity
	}

	respondJSON(w, status, map[string]interface{}{
		"accepted": result.Accepted,
		"rows":     ds.Len(),
		"errors":   result.Count(contracts.SeverityError),
		"warnings": result.Count(contracts.SeverityWarning),
		"infos":    result.Count(contracts.SeverityInfo),
		"issues":   result.Issues,
	})
}
