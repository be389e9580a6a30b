package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/demandcast/backend/internal/api"
	"github.com/demandcast/backend/internal/api/handlers"
	"github.com/demandcast/backend/internal/hyperparams"
	"github.com/demandcast/backend/internal/jobs"
	"github.com/demandcast/backend/internal/scheduler"
	schedjobs "github.com/demandcast/backend/internal/scheduler/jobs"
	"github.com/demandcast/backend/pkg/config"
	"github.com/demandcast/backend/pkg/database"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health                          - Health check
  POST /api/data/validate               - Validate an uploaded sales CSV
  POST /api/model/train                 - Recalibrate the forecast model
  GET  /api/model/status                - Model readiness
  POST /api/predictions/run             - Run the full prediction pipeline
  GET  /api/predictions/recent          - Recent persisted runs
  GET  /api/predictions/runs/{id}/items - Items of one run
  GET  /api/hyperparams                 - Active training configuration
  PUT  /api/hyperparams                 - Save a training configuration
  POST /api/hyperparams/reset           - Reset to defaults
  GET  /api/hyperparams/presets         - Built-in presets

Example:
  go run ./cmd/demandcast api
  go run ./cmd/demandcast api --port 8090`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := newLogger(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Connect to database. The pipeline itself works without one;
	// run history and saved configurations just stay unavailable.
	var runRepo *jobs.Repository
	var configRepo *hyperparams.Repository
	db, err := database.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Database unavailable, run history and saved configs disabled")
	} else {
		defer db.Close()
		runRepo = jobs.NewRepository(db.Pool)
		configRepo = hyperparams.NewRepository(db.Pool)
		log.Info("Connected to database")
	}

	// 4. Build the forecasting pipeline
	ctx := context.Background()
	orch, forecastModel, err := buildPipeline(ctx, cfg, log)
	if err != nil {
		return err
	}

	// 5. Create handlers and router
	deps := api.RouterDeps{
		Validation:  handlers.NewValidationHandler(orch, log),
		Predictions: handlers.NewPredictionHandler(orch, runRepo, log),
		Model:       handlers.NewModelHandler(orch, forecastModel, configRepo, log),
		Hyperparams: handlers.NewHyperparamsHandler(configRepo, log),
	}
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimitPerSecond), cfg.RateLimitBurst)
	router := api.NewRouter(deps, limiter, log)

	// 6. Create server
	server := api.New(cfg, log, router)

	// 7. Optional retrain scheduler
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.New(log)
		if err := sched.AddJob(schedjobs.NewRetrainJob(orch, configRepo, cfg, log)); err != nil {
			return fmt.Errorf("register retrain job: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	// 8. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
