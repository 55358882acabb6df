// Package config holds samsara's YAML-tagged runtime configuration: one
// root Config with a nested section per subsystem (router, hybrid recall,
// kala chakra decay, guardians, embedding), a DefaultConfig constructor,
// and a Validate that applies the clamps each subsystem's own Validate
// already performs, so a bad config.yaml never reaches a running router.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"samsara/internal/logging"
	"samsara/pkg/decay"
)

// Config holds all samsara configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	Router    RouterConfig    `yaml:"router"`
	Hybrid    HybridConfig    `yaml:"hybrid"`
	Kala      KalaConfig      `yaml:"kala"`
	Guardian  GuardianConfig  `yaml:"guardian"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Store     StoreConfig     `yaml:"store"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// RouterConfig tunes Turiya's LinUCB bandit and cascade escalation.
type RouterConfig struct {
	LinUCBAlpha           float64  `yaml:"linucb_alpha"`
	ColdStartThreshold    uint64   `yaml:"cold_start_threshold"`
	DailyBudgetUSD        *float64 `yaml:"daily_budget_usd,omitempty"`
	ExpectedDailyRequests *float64 `yaml:"expected_daily_requests,omitempty"`
	LambdaLearningRate    float64  `yaml:"lambda_learning_rate"`
	CostWeight            *float64 `yaml:"cost_weight,omitempty"`
	QualityThreshold      float64  `yaml:"quality_threshold"`
}

// HybridConfig tunes the RRF fusion and Thompson-sampling weight learner.
type HybridConfig struct {
	Weights        map[string]float64 `yaml:"weights"`
	K              float64            `yaml:"k"`
	PramanaDelta   float64            `yaml:"pramana_delta"`
	PramanaEnabled bool               `yaml:"pramana_enabled"`
	MinScore       float64            `yaml:"min_score"`
	Limit          int                `yaml:"limit"`
	BackendTimeout time.Duration      `yaml:"backend_timeout"`
}

// KalaConfig tunes the seven-scale temporal decay model.
type KalaConfig struct {
	HalfLives map[decay.Scale]time.Duration `yaml:"half_lives"`
	Weights   map[decay.Scale]float64       `yaml:"weights"`
}

// GuardianConfig tunes the three guardians behind the Lokapala controller.
type GuardianConfig struct {
	Rakshaka RakshakaSection `yaml:"rakshaka"`
	Gati     GatiSection     `yaml:"gati"`
	Satya    SatyaSection    `yaml:"satya"`
}

// RakshakaSection mirrors pkg/guardians.RakshakaConfig.
type RakshakaSection struct {
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	RingCapacity        int     `yaml:"ring_capacity"`
	Enabled             bool    `yaml:"enabled"`
}

// GatiSection mirrors pkg/guardians.GatiConfig.
type GatiSection struct {
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	WarnPct             float64 `yaml:"warn_pct"`
	CriticalPct         float64 `yaml:"critical_pct"`
	ResetMarginPct      float64 `yaml:"reset_margin_pct"`
	EWMAAlpha           float64 `yaml:"ewma_alpha"`
	RingCapacity        int     `yaml:"ring_capacity"`
	Enabled             bool    `yaml:"enabled"`
}

// SatyaSection mirrors pkg/guardians.SatyaConfig.
type SatyaSection struct {
	ConfidenceThreshold  float64 `yaml:"confidence_threshold"`
	StreakThreshold      int     `yaml:"streak_threshold"`
	StormThreshold       int     `yaml:"storm_threshold"`
	StormWindowTurns     int     `yaml:"storm_window_turns"`
	IncompleteTaskTurns  int     `yaml:"incomplete_task_turns"`
	CorrectionEscalation int     `yaml:"correction_escalation"`
	RingCapacity         int     `yaml:"ring_capacity"`
	Enabled              bool    `yaml:"enabled"`
}

// EmbeddingConfig selects the real embedding backend; the deterministic
// hash fallback in pkg/recall needs no configuration and is always on.
type EmbeddingConfig struct {
	Provider    string `yaml:"provider"` // "genai" or "fallback"
	GenAIModel  string `yaml:"genai_model"`
	GenAIAPIKey string `yaml:"-"` // never serialized; env-only
	Dimensions  int    `yaml:"dimensions"`
}

// StoreConfig points at the SQLite-backed persistence layer.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path"`
	UseVecIndex  bool   `yaml:"use_vec_index"`
}

// LoggingConfig configures internal/logging's categorized file logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "samsara",
		Version: "0.1.0",

		Router: RouterConfig{
			LinUCBAlpha:        1.0,
			ColdStartThreshold: 10,
			LambdaLearningRate: 0.01,
			QualityThreshold:   0.5,
		},

		Hybrid: HybridConfig{
			Weights: map[string]float64{
				"bm25":     1.0,
				"vector":   1.0,
				"graphrag": 1.0,
			},
			K:              60,
			PramanaDelta:   0.10,
			PramanaEnabled: true,
			MinScore:       0,
			Limit:          20,
			BackendTimeout: 2 * time.Second,
		},

		Kala: KalaConfig{
			HalfLives: map[decay.Scale]time.Duration{
				decay.ScaleTurn:    60 * time.Second,
				decay.ScaleSession: time.Hour,
				decay.ScaleDay:     24 * time.Hour,
				decay.ScaleWeek:    7 * 24 * time.Hour,
				decay.ScaleMonth:   30 * 24 * time.Hour,
				decay.ScaleQuarter: 90 * 24 * time.Hour,
				decay.ScaleYear:    365 * 24 * time.Hour,
			},
			Weights: map[decay.Scale]float64{
				decay.ScaleTurn:    0.25,
				decay.ScaleSession: 0.20,
				decay.ScaleDay:     0.18,
				decay.ScaleWeek:    0.13,
				decay.ScaleMonth:   0.10,
				decay.ScaleQuarter: 0.07,
				decay.ScaleYear:    0.07,
			},
		},

		Guardian: GuardianConfig{
			Rakshaka: RakshakaSection{ConfidenceThreshold: 0.3, RingCapacity: 200, Enabled: true},
			Gati: GatiSection{
				ConfidenceThreshold: 0.3, WarnPct: 0.75, CriticalPct: 0.90,
				ResetMarginPct: 0.05, EWMAAlpha: 0.2, RingCapacity: 200, Enabled: true,
			},
			Satya: SatyaSection{
				ConfidenceThreshold: 0.3, StreakThreshold: 3, StormThreshold: 5,
				StormWindowTurns: 6, IncompleteTaskTurns: 15, CorrectionEscalation: 3,
				RingCapacity: 200, Enabled: true,
			},
		},

		Embedding: EmbeddingConfig{
			Provider:   "fallback",
			GenAIModel: "gemini-embedding-001",
			Dimensions: 384,
		},

		Store: StoreConfig{
			DatabasePath: "data/samsara.db",
			UseVecIndex:  false,
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   "samsara.log",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults if
// the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	logging.ConfigDebug("loading config from: %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Config("config file not found, using defaults: %s", path)
			cfg.applyEnvOverrides()
			return cfg, cfg.Validate()
		}
		logging.ConfigError("failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		logging.ConfigError("failed to parse config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logging.Config("config loaded: provider=%s db=%s", cfg.Embedding.Provider, cfg.Store.DatabasePath)
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GENAI_API_KEY"); key != "" {
		c.Embedding.GenAIAPIKey = key
		if c.Embedding.Provider == "" || c.Embedding.Provider == "fallback" {
			c.Embedding.Provider = "genai"
		}
	}
	if path := os.Getenv("SAMSARA_DB"); path != "" {
		c.Store.DatabasePath = path
	}
	if v := os.Getenv("SAMSARA_DAILY_BUDGET_USD"); v != "" {
		var f float64
		if _, err := fmt.Sscanf(v, "%f", &f); err == nil {
			c.Router.DailyBudgetUSD = &f
		}
	}
}

// GetBackendTimeout returns the hybrid backend fan-out timeout.
func (c *Config) GetBackendTimeout() time.Duration {
	if c.Hybrid.BackendTimeout <= 0 {
		return 2 * time.Second
	}
	return c.Hybrid.BackendTimeout
}
