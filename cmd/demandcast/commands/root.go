package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "demandcast",
	Short: "Demandcast - demand forecasting and inventory risk service",
	Long: `Demandcast CLI

Demand forecasting pipeline for retail sales history: dataset
validation, gradient-boosted demand prediction, and per-item
inventory risk reporting.

Usage:
  go run ./cmd/demandcast [command]

Examples:
  go run ./cmd/demandcast api
  go run ./cmd/demandcast validate sales.csv
  go run ./cmd/demandcast train sales.csv --preset high_accuracy
  go run ./cmd/demandcast predict sales.csv`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
