package commands

import (
	"context"
	"fmt"

	"github.com/demandcast/backend/internal/features"
	"github.com/demandcast/backend/internal/inventory"
	"github.com/demandcast/backend/internal/model"
	"github.com/demandcast/backend/internal/pipeline"
	"github.com/demandcast/backend/internal/validation"
	"github.com/demandcast/backend/pkg/config"
	"github.com/demandcast/backend/pkg/logger"
)

// newLogger builds the process logger, honoring the --verbose flag.
func newLogger(cfg *config.Config) *logger.Logger {
	if verbose {
		cfg.LogLevel = "debug"
		cfg.LogFormat = "pretty"
	}
	return logger.New(cfg)
}

// buildPipeline wires the core forecasting pipeline: feature builder,
// model over its artifact store, validator, and aggregator. A persisted
// artifact is restored when one exists.
func buildPipeline(ctx context.Context, cfg *config.Config, log *logger.Logger) (*pipeline.Orchestrator, *model.Model, error) {
	builder := features.NewBuilder(log)
	store := model.NewFileStore(cfg.Model.ArtifactPath)
	forecastModel := model.New(store, builder, log)
	if err := forecastModel.Load(ctx); err != nil {
		return nil, nil, fmt.Errorf("restore model artifact: %w", err)
	}

	orch := pipeline.New(
		validation.New(log),
		builder,
		forecastModel,
		inventory.NewAggregator(),
		cfg.Model.SplitCutoff,
		log,
	)
	return orch, forecastModel, nil
}
