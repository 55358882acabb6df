package config

import (
	"fmt"
	"time"

	"samsara/pkg/decay"
	"samsara/pkg/guardians"
	"samsara/pkg/hybrid"
	"samsara/pkg/kalachakra"
	"samsara/pkg/turiya"
)

const (
	minHalfLife = time.Second
	maxHalfLife = 100 * 365 * 24 * time.Hour

	minConfidenceThreshold = 0.05
	maxConfidenceThreshold = 1.0

	minRingCapacity = 1
)

// Validate clamps every subsystem section into range in place and reports
// the first structural error it cannot silently fix (an unparseable
// embedding provider, for instance). Out-of-range numeric knobs are
// clamped and logged rather than rejected, matching the teacher's
// tolerant Load() path.
func (c *Config) Validate() error {
	if c.Embedding.Provider != "genai" && c.Embedding.Provider != "fallback" {
		return fmt.Errorf("invalid embedding provider: %s (valid: genai, fallback)", c.Embedding.Provider)
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 384
	}

	c.clampKala()
	c.clampGuardian()
	c.clampRouter()

	if c.Hybrid.K <= 0 {
		c.Hybrid.K = decay.DefaultRRFK
	}
	if c.Hybrid.Limit <= 0 {
		c.Hybrid.Limit = 20
	}
	if c.Hybrid.BackendTimeout <= 0 {
		c.Hybrid.BackendTimeout = 2 * time.Second
	}

	return nil
}

func (c *Config) clampKala() {
	for scale, hl := range c.Kala.HalfLives {
		if hl < minHalfLife {
			hl = minHalfLife
		}
		if hl > maxHalfLife {
			hl = maxHalfLife
		}
		c.Kala.HalfLives[scale] = hl
	}
	for scale, w := range c.Kala.Weights {
		c.Kala.Weights[scale] = decay.Clamp01(w)
	}
}

func (c *Config) clampGuardian() {
	c.Guardian.Rakshaka.ConfidenceThreshold = clampConfidence(c.Guardian.Rakshaka.ConfidenceThreshold)
	c.Guardian.Gati.ConfidenceThreshold = clampConfidence(c.Guardian.Gati.ConfidenceThreshold)
	c.Guardian.Satya.ConfidenceThreshold = clampConfidence(c.Guardian.Satya.ConfidenceThreshold)

	c.Guardian.Rakshaka.RingCapacity = clampRingCapacity(c.Guardian.Rakshaka.RingCapacity)
	c.Guardian.Gati.RingCapacity = clampRingCapacity(c.Guardian.Gati.RingCapacity)
	c.Guardian.Satya.RingCapacity = clampRingCapacity(c.Guardian.Satya.RingCapacity)
}

func (c *Config) clampRouter() {
	if c.Router.LinUCBAlpha < 0 {
		c.Router.LinUCBAlpha = 1.0
	}
	if c.Router.QualityThreshold < 0 || c.Router.QualityThreshold > 1 {
		c.Router.QualityThreshold = turiya.DefaultQualityThreshold
	}
}

func clampConfidence(v float64) float64 {
	if v < minConfidenceThreshold {
		return minConfidenceThreshold
	}
	if v > maxConfidenceThreshold {
		return maxConfidenceThreshold
	}
	return v
}

func clampRingCapacity(n int) int {
	if n < minRingCapacity {
		return guardians.DefaultRingCapacity
	}
	if n > guardians.MaxRingCapacity {
		return guardians.MaxRingCapacity
	}
	return n
}

// KalaChakraConfig converts the YAML section into pkg/kalachakra's Config,
// which then applies its own Validate for any scale missing from the file.
func (c *Config) KalaChakraConfig() kalachakra.Config {
	return kalachakra.Config{
		HalfLives: c.Kala.HalfLives,
		Weights:   c.Kala.Weights,
	}.Validate()
}

// RakshakaConfig converts the YAML section into pkg/guardians.RakshakaConfig.
func (c *Config) RakshakaConfig() guardians.RakshakaConfig {
	return guardians.RakshakaConfig{
		ConfidenceThreshold: c.Guardian.Rakshaka.ConfidenceThreshold,
		RingCapacity:        c.Guardian.Rakshaka.RingCapacity,
		Enabled:             c.Guardian.Rakshaka.Enabled,
	}.Validate()
}

// GatiConfig converts the YAML section into pkg/guardians.GatiConfig.
func (c *Config) GatiConfig() guardians.GatiConfig {
	return guardians.GatiConfig{
		ConfidenceThreshold: c.Guardian.Gati.ConfidenceThreshold,
		WarnPct:             c.Guardian.Gati.WarnPct,
		CriticalPct:         c.Guardian.Gati.CriticalPct,
		ResetMarginPct:      c.Guardian.Gati.ResetMarginPct,
		EWMAAlpha:           c.Guardian.Gati.EWMAAlpha,
		RingCapacity:        c.Guardian.Gati.RingCapacity,
		Enabled:             c.Guardian.Gati.Enabled,
	}.Validate()
}

// SatyaConfig converts the YAML section into pkg/guardians.SatyaConfig.
func (c *Config) SatyaConfig() guardians.SatyaConfig {
	return guardians.SatyaConfig{
		ConfidenceThreshold:  c.Guardian.Satya.ConfidenceThreshold,
		StreakThreshold:      c.Guardian.Satya.StreakThreshold,
		StormThreshold:       c.Guardian.Satya.StormThreshold,
		StormWindowTurns:     c.Guardian.Satya.StormWindowTurns,
		IncompleteTaskTurns:  c.Guardian.Satya.IncompleteTaskTurns,
		CorrectionEscalation: c.Guardian.Satya.CorrectionEscalation,
		RingCapacity:         c.Guardian.Satya.RingCapacity,
		Enabled:              c.Guardian.Satya.Enabled,
	}.Validate()
}

// TuriyaConfig converts the YAML section into pkg/turiya.Config.
func (c *Config) TuriyaConfig() turiya.Config {
	cfg := turiya.DefaultConfig()
	cfg.LinUCBAlpha = c.Router.LinUCBAlpha
	cfg.ColdStartThreshold = c.Router.ColdStartThreshold
	cfg.LambdaLearningRate = c.Router.LambdaLearningRate
	cfg.QualityThreshold = c.Router.QualityThreshold
	cfg.DailyBudget = c.Router.DailyBudgetUSD
	cfg.ExpectedDailyRequests = c.Router.ExpectedDailyRequests
	cfg.CostWeight = c.Router.CostWeight
	return cfg
}

// FuseConfig converts the YAML section into pkg/hybrid.FuseConfig.
func (c *Config) FuseConfig() hybrid.FuseConfig {
	weights := make(map[hybrid.Source]float64, len(c.Hybrid.Weights))
	for k, v := range c.Hybrid.Weights {
		weights[hybrid.Source(k)] = v
	}
	return hybrid.FuseConfig{
		Weights:        weights,
		K:              c.Hybrid.K,
		PramanaDelta:   c.Hybrid.PramanaDelta,
		PramanaEnabled: c.Hybrid.PramanaEnabled,
		MinScore:       c.Hybrid.MinScore,
		Limit:          c.Hybrid.Limit,
	}
}
