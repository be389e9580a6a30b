package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/demandcast/backend/internal/contracts"
	"github.com/demandcast/backend/internal/dataset"
	"github.com/demandcast/backend/internal/pipeline"
	"github.com/demandcast/backend/pkg/config"
)

// predictCmd represents the predict command
var predictCmd = &cobra.Command{
	Use:   "predict [csv-file]",
	Short: "Run the prediction pipeline",
	Long: `Validates the dataset, scores it with the trained model, and prints
the per-item inventory risk report. Requires a trained artifact
(run the train command first).

Example:
  go run ./cmd/demandcast predict sales.csv
  go run ./cmd/demandcast predict sales.csv --item SKU-001`,
	Args: cobra.ExactArgs(1),
	RunE: runPredict,
}

var (
	predictItem   string
	predictSeason string
)

func init() {
	rootCmd.AddCommand(predictCmd)

	predictCmd.Flags().StringVar(&predictItem, "item", "", "restrict to one item code")
	predictCmd.Flags().StringVar(&predictSeason, "season", "", "restrict to one season")
}

func runPredict(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := newLogger(cfg)

	ctx := context.Background()
	orch, forecastModel, err := buildPipeline(ctx, cfg, log)
	if err != nil {
		return err
	}
	if !forecastModel.Ready() {
		return fmt.Errorf("no trained model at %s, run train first", cfg.Model.ArtifactPath)
	}

	ds, err := dataset.LoadCSVFile(args[0])
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	filter := dataset.Filter{}
	if predictItem != "" {
		filter["item_code"] = predictItem
	}
	if predictSeason != "" {
		filter["season"] = predictSeason
	}

	res, err := orch.Predict(ctx, ds, filter)
	if err != nil {
		var vErr *pipeline.ValidationFailedError
		if errors.As(err, &vErr) {
			for _, issue := range vErr.Result.Issues {
				if issue.Severity == contracts.SeverityError {
					fmt.Printf("  [ERROR] %s: %s\n", issue.Kind, issue.Message)
				}
			}
		}
		return err
	}

	fmt.Printf("Scored %d of %d rows across %d items\n\n", res.RowsFeatured, res.RowsInput, len(res.Items))
	fmt.Printf("%-16s %10s %10s %10s %10s %10s  %s\n",
		"ITEM", "DEMAND/D", "VOLATILITY", "STOCK", "SAFETY", "TARGET", "STATE")
	for _, item := range res.Items {
		fmt.Printf("%-16s %10.2f %10.2f %10.0f %10.1f %10.0f  %s\n",
			item.ItemCode, item.MeanDemand, item.Volatility,
			item.CurrentStock, item.SafetyStock, item.TargetStock, item.State)
	}

	fmt.Printf("\nSummary: %d stockout risk, %d overstock, %d OK\n",
		res.Summary[string(contracts.StateStockoutRisk)],
		res.Summary[string(contracts.StateOverstock)],
		res.Summary[string(contracts.StateOK)])
	return nil
}
