package config

import (
	"path/filepath"
	"testing"

	"samsara/pkg/decay"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Name != "samsara" {
		t.Errorf("expected Name=samsara, got %s", cfg.Name)
	}
	if cfg.Embedding.Provider != "fallback" {
		t.Errorf("expected Provider=fallback, got %s", cfg.Embedding.Provider)
	}
	if cfg.Guardian.Rakshaka.RingCapacity != 200 {
		t.Errorf("expected RingCapacity=200, got %d", cfg.Guardian.Rakshaka.RingCapacity)
	}
	sum := 0.0
	for _, w := range cfg.Kala.Weights {
		sum += w
	}
	if sum < 0.99 || sum > 1.01 {
		t.Errorf("expected kala weights to sum to ~1.0, got %f", sum)
	}
}

func TestConfigSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Embedding.Provider = "genai"
	cfg.Store.DatabasePath = "custom.db"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Embedding.Provider != "genai" {
		t.Errorf("expected Provider=genai, got %s", loaded.Embedding.Provider)
	}
	if loaded.Store.DatabasePath != "custom.db" {
		t.Errorf("expected DatabasePath=custom.db, got %s", loaded.Store.DatabasePath)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("expected no error for missing config, got %v", err)
	}
	if cfg.Name != "samsara" {
		t.Errorf("expected defaults, got Name=%s", cfg.Name)
	}
}

func TestValidateRejectsUnknownEmbeddingProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Embedding.Provider = "bogus"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for unknown embedding provider")
	}
}

func TestValidateClampsOutOfRangeGuardianThresholds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Guardian.Rakshaka.ConfidenceThreshold = 50
	cfg.Guardian.Gati.RingCapacity = -1
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Guardian.Rakshaka.ConfidenceThreshold != maxConfidenceThreshold {
		t.Errorf("expected clamp to %f, got %f", maxConfidenceThreshold, cfg.Guardian.Rakshaka.ConfidenceThreshold)
	}
	if cfg.Guardian.Gati.RingCapacity <= 0 {
		t.Errorf("expected positive ring capacity after clamp, got %d", cfg.Guardian.Gati.RingCapacity)
	}
}

func TestValidateClampsKalaHalfLives(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Kala.HalfLives[decay.ScaleTurn] = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Kala.HalfLives[decay.ScaleTurn] < minHalfLife {
		t.Errorf("expected half-life clamped to >= %v", minHalfLife)
	}
}

func TestEnvOverridesGenAIKey(t *testing.T) {
	t.Setenv("GENAI_API_KEY", "test-key")
	cfg := DefaultConfig()
	cfg.applyEnvOverrides()
	if cfg.Embedding.GenAIAPIKey != "test-key" {
		t.Errorf("expected GenAIAPIKey=test-key, got %s", cfg.Embedding.GenAIAPIKey)
	}
	if cfg.Embedding.Provider != "genai" {
		t.Errorf("expected Provider switched to genai, got %s", cfg.Embedding.Provider)
	}
}

func TestConvertersProduceSubsystemConfigs(t *testing.T) {
	cfg := DefaultConfig()

	kc := cfg.KalaChakraConfig()
	if len(kc.Weights) != 7 {
		t.Errorf("expected 7 scales, got %d", len(kc.Weights))
	}

	rc := cfg.RakshakaConfig()
	if !rc.Enabled {
		t.Error("expected Rakshaka enabled by default")
	}

	fc := cfg.FuseConfig()
	if fc.K != 60 {
		t.Errorf("expected K=60, got %f", fc.K)
	}

	tc := cfg.TuriyaConfig()
	if tc.QualityThreshold != cfg.Router.QualityThreshold {
		t.Errorf("expected QualityThreshold passthrough, got %f", tc.QualityThreshold)
	}
}
