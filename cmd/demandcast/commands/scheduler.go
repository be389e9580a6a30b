package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/demandcast/backend/internal/hyperparams"
	"github.com/demandcast/backend/internal/scheduler"
	schedjobs "github.com/demandcast/backend/internal/scheduler/jobs"
	"github.com/demandcast/backend/pkg/config"
	"github.com/demandcast/backend/pkg/database"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the retrain scheduler",
	Long: `Starts the scheduler daemon with the model retrain job registered.

The retrain job reloads SCHEDULER_TRAIN_DATA_PATH on the cron
schedule in SCHEDULER_RETRAIN_SPEC and recalibrates the model with
the active hyperparameter configuration.

Example:
  SCHEDULER_ENABLED=true SCHEDULER_TRAIN_DATA_PATH=sales.csv \
    go run ./cmd/demandcast scheduler`,
	RunE: runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Scheduler.TrainDataPath == "" {
		return fmt.Errorf("SCHEDULER_TRAIN_DATA_PATH is required")
	}
	log := newLogger(cfg)

	var configRepo *hyperparams.Repository
	db, err := database.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Database unavailable, retraining with default hyperparameters")
	} else {
		defer db.Close()
		configRepo = hyperparams.NewRepository(db.Pool)
	}

	orch, _, err := buildPipeline(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}

	sched := scheduler.New(log)
	if err := sched.AddJob(schedjobs.NewRetrainJob(orch, configRepo, cfg, log)); err != nil {
		return fmt.Errorf("register retrain job: %w", err)
	}

	sched.Start()
	defer sched.Stop()

	fmt.Printf("Scheduler running (retrain: %s). Press Ctrl+C to stop\n", cfg.Scheduler.RetrainSpec)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	return nil
}
