package jobs

import (
	"context"
	"fmt"

	"github.com/demandcast/backend/internal/contracts"
	"github.com/demandcast/backend/internal/dataset"
	"github.com/demandcast/backend/internal/hyperparams"
	"github.com/demandcast/backend/internal/pipeline"
	"github.com/demandcast/backend/pkg/config"
	"github.com/demandcast/backend/pkg/logger"
)

// RetrainJob recalibrates the forecast model from the configured sales
// history file on a schedule. The active hyperparameter configuration is
// used when one exists, otherwise the defaults.
type RetrainJob struct {
	orchestrator *pipeline.Orchestrator
	configs      *hyperparams.Repository
	config       *config.Config
	logger       *logger.Logger
}

// NewRetrainJob creates a retrain job. configs may be nil when the
// service runs without a database.
func NewRetrainJob(orch *pipeline.Orchestrator, configs *hyperparams.Repository,
	cfg *config.Config, log *logger.Logger) *RetrainJob {
	return &RetrainJob{
		orchestrator: orch,
		configs:      configs,
		config:       cfg,
		logger:       log,
	}
}

// Name returns the job name.
func (j *RetrainJob) Name() string {
	return "model_retrain"
}

// Schedule returns the configured cron expression.
func (j *RetrainJob) Schedule() string {
	return j.config.Scheduler.RetrainSpec
}

// Run reloads the training dataset and recalibrates the model.
func (j *RetrainJob) Run(ctx context.Context) error {
	path := j.config.Scheduler.TrainDataPath
	j.logger.WithField("path", path).Info("Starting scheduled recalibration")

	ds, err := dataset.LoadCSVFile(path)
	if err != nil {
		return fmt.Errorf("load training data: %w", err)
	}

	hp := j.activeParams(ctx)

	report, err := j.orchestrator.Train(ctx, ds, hp)
	if err != nil {
		return fmt.Errorf("recalibrate: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"train_rows":   report.TrainRows,
		"holdout_rows": report.HoldoutRows,
		"mae":          report.Metrics.MAE,
		"wape":         report.Metrics.WAPE,
	}).Info("Scheduled recalibration complete")

	return nil
}

func (j *RetrainJob) activeParams(ctx context.Context) contracts.Hyperparameters {
	if j.configs == nil {
		return contracts.DefaultHyperparameters()
	}

	saved, err := j.configs.Active(ctx)
	if err != nil {
		j.logger.WithError(err).Warn("No active hyperparameter configuration, using defaults")
		return contracts.DefaultHyperparameters()
	}
	return saved.Params
}
