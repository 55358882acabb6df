package kalachakra

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"samsara/internal/collab"
	"samsara/internal/collab/collabtest"
	"samsara/pkg/decay"
)

func TestDefaultConfigWeightsSumToOne(t *testing.T) {
	cfg := DefaultConfig()
	var sum float64
	for _, scale := range AllScales {
		sum += cfg.Weights[scale]
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestValidateClampsAndFillsMissing(t *testing.T) {
	cfg := Config{
		HalfLives: map[decay.Scale]time.Duration{decay.ScaleTurn: -5},
		Weights:   map[decay.Scale]float64{decay.ScaleTurn: 5.0},
	}
	out := cfg.Validate()
	assert.Equal(t, DefaultConfig().HalfLives[decay.ScaleTurn], out.HalfLives[decay.ScaleTurn])
	assert.Equal(t, 1.0, out.Weights[decay.ScaleTurn])
	assert.Equal(t, DefaultConfig().HalfLives[decay.ScaleSession], out.HalfLives[decay.ScaleSession])
}

func TestRelevanceScoreAtZeroElapsedIsOne(t *testing.T) {
	k := New(DefaultConfig())
	now := int64(1_000_000)
	assert.InDelta(t, 1.0, k.RelevanceScore(now, now), 1e-9)
}

func TestRelevanceScoreFutureTimestampClampsToNow(t *testing.T) {
	k := New(DefaultConfig())
	now := int64(1_000_000)
	assert.InDelta(t, 1.0, k.RelevanceScore(now+5000, now), 1e-9)
}

func TestRelevanceScoreDecreasesOverTime(t *testing.T) {
	k := New(DefaultConfig())
	now := int64(10_000_000)
	a := k.RelevanceScore(now-1000, now)
	b := k.RelevanceScore(now-100_000, now)
	c := k.RelevanceScore(now-100_000_000, now)
	assert.Greater(t, a, b)
	assert.Greater(t, b, c)
}

func TestMultiScaleRelevanceSumsToRelevanceScore(t *testing.T) {
	k := New(DefaultConfig())
	now := int64(5_000_000)
	docTs := now - 250_000
	var sum float64
	for _, scale := range AllScales {
		sum += k.MultiScaleRelevance(docTs, now, scale)
	}
	assert.InDelta(t, k.RelevanceScore(docTs, now), sum, 1e-9)
}

func TestMultiScaleRelevanceEmptyScaleIsFullScore(t *testing.T) {
	k := New(DefaultConfig())
	now := int64(5_000_000)
	docTs := now - 250_000
	assert.InDelta(t, k.RelevanceScore(docTs, now), k.MultiScaleRelevance(docTs, now, ""), 1e-9)
}

func TestDominantScaleThresholds(t *testing.T) {
	assert.Equal(t, decay.ScaleTurn, DominantScale(int64(2*time.Minute)))
	assert.Equal(t, decay.ScaleSession, DominantScale(int64(30*time.Minute)))
	assert.Equal(t, decay.ScaleDay, DominantScale(int64(10*time.Hour)))
	assert.Equal(t, decay.ScaleWeek, DominantScale(int64(5*24*time.Hour)))
	assert.Equal(t, decay.ScaleMonth, DominantScale(int64(20*24*time.Hour)))
	assert.Equal(t, decay.ScaleQuarter, DominantScale(int64(60*24*time.Hour)))
	assert.Equal(t, decay.ScaleYear, DominantScale(int64(200*24*time.Hour)))
}

func TestDominantScaleNegativeElapsedUsesAbsoluteValue(t *testing.T) {
	assert.Equal(t, DominantScale(int64(2*time.Minute)), DominantScale(-int64(2*time.Minute)))
}

func TestBoostScoreBounds(t *testing.T) {
	k := New(DefaultConfig())
	now := int64(1_000_000)
	boosted := k.BoostScore(10.0, now-50_000_000, now)
	assert.GreaterOrEqual(t, boosted, 5.0)
	assert.LessOrEqual(t, boosted, 10.0)
}

func TestBoostScoreAtZeroElapsedReturnsOriginal(t *testing.T) {
	k := New(DefaultConfig())
	now := int64(1_000_000)
	assert.InDelta(t, 10.0, k.BoostScore(10.0, now, now), 1e-9)
}

func TestBuildContextWithoutSessionStore(t *testing.T) {
	k := New(DefaultConfig())
	now := time.Date(2026, 7, 29, 12, 0, 0, 0, time.UTC)
	kc := k.BuildContext(context.Background(), 3, "sess-1", nil, now)
	assert.Equal(t, uint32(3), kc.TurnNumber)
	assert.Equal(t, "sess-1", kc.SessionID)
	assert.Equal(t, "2026-07-29", kc.Date)
	assert.Equal(t, 3, kc.Quarter)
	assert.Equal(t, 2026, kc.Year)
	assert.Len(t, kc.Scales, 7)
	assert.Zero(t, kc.SessionCount)
	assert.Zero(t, kc.TurnCount)
}

func TestBuildContextWithSessionStore(t *testing.T) {
	k := New(DefaultConfig())
	store := collabtest.NewSessionStore()
	store.Sessions["sess-1"] = collab.SessionMeta{ID: "sess-1", Project: "p"}
	store.Sessions["sess-2"] = collab.SessionMeta{ID: "sess-2", Project: "p"}
	store.Turns["sess-1"] = []collab.Turn{{TurnNumber: 1, Role: "user", Content: "hi"}}

	now := time.Now()
	kc := k.BuildContext(context.Background(), 1, "sess-1", store, now)
	assert.Equal(t, 2, kc.SessionCount)
	assert.Equal(t, 1, kc.TurnCount)
}
