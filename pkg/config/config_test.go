package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Check defaults
	if cfg.Port != "8090" {
		t.Errorf("Expected Port to be 8090, got %s", cfg.Port)
	}

	if cfg.Env != "development" {
		t.Errorf("Expected Env to be development, got %s", cfg.Env)
	}

	if cfg.Database.MaxConns != 25 {
		t.Errorf("Expected DB MaxConns to be 25, got %d", cfg.Database.MaxConns)
	}

	want := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	if !cfg.Model.SplitCutoff.Equal(want) {
		t.Errorf("Expected default split cutoff %s, got %s", want, cfg.Model.SplitCutoff)
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	os.Setenv("ENV", "sandbox")
	defer os.Unsetenv("ENV")

	if _, err := Load(); err == nil {
		t.Error("Load() should reject unknown ENV values")
	}
}

func TestLoad_CustomCutoff(t *testing.T) {
	os.Setenv("MODEL_SPLIT_CUTOFF", "2025-06-15")
	defer os.Unsetenv("MODEL_SPLIT_CUTOFF")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	want := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	if !cfg.Model.SplitCutoff.Equal(want) {
		t.Errorf("Expected split cutoff %s, got %s", want, cfg.Model.SplitCutoff)
	}
}

func TestLoad_SchedulerRequiresDataPath(t *testing.T) {
	os.Setenv("SCHEDULER_ENABLED", "true")
	defer os.Unsetenv("SCHEDULER_ENABLED")

	if _, err := Load(); err == nil {
		t.Error("Load() should require SCHEDULER_TRAIN_DATA_PATH when scheduler is enabled")
	}
}
