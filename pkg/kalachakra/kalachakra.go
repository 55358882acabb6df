// Package kalachakra implements the seven-scale temporal relevance model:
// turn, session, day, week, month, quarter, year. Each scale has a half-life
// and a weight; relevanceScore sums the weighted decay across all seven.
// Chakra is stateless — every method is a pure function of (docTs, now) and
// the held Config, matching the "holds no mutable state beyond
// configuration" lifecycle rule.
package kalachakra

import (
	"context"
	"time"

	"samsara/internal/collab"
	"samsara/pkg/decay"
)

// Config holds the seven half-lives and seven scale weights. Clamp rules:
// half-lives to [1s, 100*year], weights to [0,1]; the weight vector should
// sum to ~1.0 but Validate does not renormalize, it only clamps per-scale.
type Config struct {
	HalfLives map[decay.Scale]time.Duration
	Weights   map[decay.Scale]float64
}

// AllScales lists the seven fixed scales in canonical (finest-to-coarsest) order.
var AllScales = []decay.Scale{
	decay.ScaleTurn,
	decay.ScaleSession,
	decay.ScaleDay,
	decay.ScaleWeek,
	decay.ScaleMonth,
	decay.ScaleQuarter,
	decay.ScaleYear,
}

const yearMs = 365 * 24 * time.Hour

// DefaultConfig returns the spec-mandated half-lives and scale weights.
func DefaultConfig() Config {
	return Config{
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
	}
}

// Validate clamps half-lives to [1s, 100*year] and weights to [0,1], scale
// by scale. Missing entries are filled from DefaultConfig.
func (c Config) Validate() Config {
	def := DefaultConfig()
	out := Config{
		HalfLives: make(map[decay.Scale]time.Duration, len(AllScales)),
		Weights:   make(map[decay.Scale]float64, len(AllScales)),
	}
	const minHalfLife = time.Second
	maxHalfLife := 100 * yearMs

	for _, scale := range AllScales {
		hl, ok := c.HalfLives[scale]
		if !ok || hl <= 0 {
			hl = def.HalfLives[scale]
		}
		clamped := decay.ClampRate(float64(hl), float64(minHalfLife), float64(maxHalfLife))
		out.HalfLives[scale] = time.Duration(clamped)

		w, ok := c.Weights[scale]
		if !ok {
			w = def.Weights[scale]
		}
		out.Weights[scale] = decay.Clamp01(w)
	}
	return out
}

// Chakra is the stateless temporal scoring engine.
type Chakra struct {
	cfg Config
}

// New constructs a Chakra from an already-validated Config.
func New(cfg Config) *Chakra {
	return &Chakra{cfg: cfg.Validate()}
}

// RelevanceScore sums weight[scale]*decayFactor(now-docTs, halfLife[scale])
// across all seven scales. Returns 1.0 when docTs==now; future timestamps
// (docTs > now) clamp elapsed to 0.
func (k *Chakra) RelevanceScore(docTs, now int64) float64 {
	elapsed := float64(now - docTs)
	if elapsed < 0 {
		elapsed = 0
	}
	var total float64
	for _, scale := range AllScales {
		total += k.cfg.Weights[scale] * decay.DecayFactor(elapsed, float64(k.cfg.HalfLives[scale]))
	}
	return total
}

// MultiScaleRelevance returns the single weighted term for the given scale
// when scale != "", otherwise the full RelevanceScore. Summing the
// single-scale values across all scales reproduces RelevanceScore.
func (k *Chakra) MultiScaleRelevance(docTs, now int64, scale decay.Scale) float64 {
	if scale == "" {
		return k.RelevanceScore(docTs, now)
	}
	elapsed := float64(now - docTs)
	if elapsed < 0 {
		elapsed = 0
	}
	return k.cfg.Weights[scale] * decay.DecayFactor(elapsed, float64(k.cfg.HalfLives[scale]))
}

// DominantScale classifies |elapsed| (milliseconds) into one of the seven
// scales via fixed thresholds.
func DominantScale(elapsedMs int64) decay.Scale {
	if elapsedMs < 0 {
		elapsedMs = -elapsedMs
	}
	e := time.Duration(elapsedMs)
	switch {
	case e < 5*time.Minute:
		return decay.ScaleTurn
	case e < 2*time.Hour:
		return decay.ScaleSession
	case e < 36*time.Hour:
		return decay.ScaleDay
	case e < 10*24*time.Hour:
		return decay.ScaleWeek
	case e < 45*24*time.Hour:
		return decay.ScaleMonth
	case e < 120*24*time.Hour:
		return decay.ScaleQuarter
	default:
		return decay.ScaleYear
	}
}

// BoostScore scales original by (0.5 + 0.5*relevance), preserving sign and
// bounding the result to [0.5*|original|, |original|].
func (k *Chakra) BoostScore(original float64, docTs, now int64) float64 {
	relevance := k.RelevanceScore(docTs, now)
	factor := 0.5 + 0.5*relevance
	return original * factor
}

// ScaleFact holds the positional facts for one scale within a KalaContext.
type ScaleFact struct {
	Scale  decay.Scale
	Weight float64
}

// KalaContext assembles positional facts across all seven scales plus
// optional DB-derived counts, all best-effort: a query failure contributes
// zero rather than aborting context construction.
type KalaContext struct {
	TurnNumber   uint32
	SessionID    string
	Date         string // YYYY-MM-DD
	ISOWeek      int
	Month        int
	Quarter      int
	Year         int
	SessionCount int
	TurnCount    int
	VasanaCount  int // latent-impression count: memory-stream entries touched this session
	Scales       []ScaleFact
}

// BuildContext assembles a KalaContext for the given turn number, session ID,
// and now. sessionStore is optional; when non-nil it is queried best-effort
// for SessionCount/TurnCount (query failure contributes zero, never aborts).
func (k *Chakra) BuildContext(ctx context.Context, turnNumber uint32, sessionID string, sessionStore collab.SessionStore, now time.Time) KalaContext {
	_, isoWeek := now.ISOWeek()
	quarter := (int(now.Month())-1)/3 + 1

	kc := KalaContext{
		TurnNumber: turnNumber,
		SessionID:  sessionID,
		Date:       now.Format("2006-01-02"),
		ISOWeek:    isoWeek,
		Month:      int(now.Month()),
		Quarter:    quarter,
		Year:       now.Year(),
		Scales:     make([]ScaleFact, 0, len(AllScales)),
	}

	for _, scale := range AllScales {
		kc.Scales = append(kc.Scales, ScaleFact{Scale: scale, Weight: k.cfg.Weights[scale]})
	}

	if sessionStore != nil {
		if sessions, err := sessionStore.List(ctx, ""); err == nil {
			kc.SessionCount = len(sessions)
		}
		if _, turns, err := sessionStore.Load(ctx, sessionID, ""); err == nil {
			kc.TurnCount = len(turns)
		}
	}

	return kc
}
