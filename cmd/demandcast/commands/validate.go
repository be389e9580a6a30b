package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/demandcast/backend/internal/contracts"
	"github.com/demandcast/backend/internal/dataset"
	"github.com/demandcast/backend/internal/validation"
	"github.com/demandcast/backend/pkg/config"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [csv-file]",
	Short: "Validate a sales dataset",
	Long: `Runs the full validation suite on a sales CSV and prints every
issue found, grouped by severity. Exits non-zero when the dataset
is rejected.

Example:
  go run ./cmd/demandcast validate sales.csv
  go run ./cmd/demandcast validate sales.csv --strict`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

var validateStrict bool

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "strict validation mode")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := newLogger(cfg)

	ds, err := dataset.LoadCSVFile(args[0])
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	result := validation.New(log).Validate(ds, validateStrict)

	fmt.Printf("Dataset: %s (%d rows, %d columns)\n\n", args[0], ds.Len(), len(ds.Columns))
	for _, issue := range result.Issues {
		marker := map[contracts.Severity]string{
			contracts.SeverityError:   "ERROR",
			contracts.SeverityWarning: "WARN ",
			contracts.SeverityInfo:    "INFO ",
		}[issue.Severity]
		fmt.Printf("  [%s] %s: %s", marker, issue.Kind, issue.Message)
		if issue.AffectedRows > 0 {
			fmt.Printf(" (%d rows, sample %v)", issue.AffectedRows, issue.SampleRows)
		}
		fmt.Println()
	}

	fmt.Printf("\n%d errors, %d warnings, %d infos\n",
		result.Count(contracts.SeverityError),
		result.Count(contracts.SeverityWarning),
		result.Count(contracts.SeverityInfo))

	if !result.Accepted {
		return fmt.Errorf("dataset rejected")
	}
	fmt.Println("Dataset accepted")
	return nil
}
