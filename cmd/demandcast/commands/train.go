package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/demandcast/backend/internal/contracts"
	"github.com/demandcast/backend/internal/dataset"
	"github.com/demandcast/backend/internal/hyperparams"
	"github.com/demandcast/backend/pkg/config"
)

// trainCmd represents the train command
var trainCmd = &cobra.Command{
	Use:   "train [csv-file]",
	Short: "Train the forecast model",
	Long: `Validates the dataset, recalibrates the gradient-boosted model on
the training partition, and reports holdout accuracy. The trained
artifact is persisted at MODEL_ARTIFACT_PATH.

Example:
  go run ./cmd/demandcast train sales.csv
  go run ./cmd/demandcast train sales.csv --preset fast_training`,
	Args: cobra.ExactArgs(1),
	RunE: runTrain,
}

var trainPreset string

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().StringVar(&trainPreset, "preset", "", "hyperparameter preset (default|high_accuracy|fast_training|balanced)")
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := newLogger(cfg)

	ctx := context.Background()
	orch, _, err := buildPipeline(ctx, cfg, log)
	if err != nil {
		return err
	}

	ds, err := dataset.LoadCSVFile(args[0])
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	hp := contracts.DefaultHyperparameters()
	if trainPreset != "" {
		if hp, err = hyperparams.Preset(trainPreset); err != nil {
			return err
		}
	}

	fmt.Printf("Training on %s (%d rows, cutoff %s, preset %s)...\n",
		args[0], ds.Len(), cfg.Model.SplitCutoff.Format("2006-01-02"), hp.Name)

	report, err := orch.Train(ctx, ds, hp)
	if err != nil {
		return err
	}

	fmt.Printf("\nTrained on %d vectors, evaluated on %d (%s to %s)\n",
		report.TrainRows, report.HoldoutRows,
		report.HoldoutFrom.Format("2006-01-02"), report.HoldoutTo.Format("2006-01-02"))
	fmt.Printf("  MAE   %8.3f\n", report.Metrics.MAE)
	fmt.Printf("  RMSE  %8.3f\n", report.Metrics.RMSE)
	fmt.Printf("  MAPE  %7.2f%%\n", report.Metrics.MAPE)
	fmt.Printf("  WAPE  %7.2f%%\n", report.Metrics.WAPE)
	fmt.Printf("  sMAPE %7.2f%%\n", report.Metrics.SMAPE)
	fmt.Printf("  Bias  %+7.2f%%\n", report.Metrics.Bias)
	fmt.Printf("  R2    %8.4f\n", report.Metrics.R2)

	if len(report.Importance) > 0 {
		fmt.Println("\nTop features:")
		top := report.Importance
		if len(top) > 10 {
			top = top[:10]
		}
		for _, fi := range top {
			fmt.Printf("  %2d. %-28s %.4f\n", fi.Rank, fi.Feature, fi.Importance)
		}
	}

	fmt.Printf("\nArtifact saved to %s\n", cfg.Model.ArtifactPath)
	return nil
}
