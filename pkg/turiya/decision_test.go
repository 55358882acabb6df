package turiya

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// P6 (cascade monotonicity)
func TestCascadeEscalatesOneTierUpWithHigherCost(t *testing.T) {
	d := Decision{Tier: TierHaiku, ArmIndex: int(TierHaiku), Confidence: 0.2, CostEstimate: DefaultTierCost[TierHaiku]}
	escalated := CascadeDecision(d, DefaultQualityThreshold)

	assert.Equal(t, TierSonnet, escalated.Tier)
	assert.True(t, strings.Contains(escalated.Rationale, "[cascade]"))
	assert.NotNil(t, escalated.OriginalTier)
	assert.Equal(t, TierHaiku, *escalated.OriginalTier)
	assert.GreaterOrEqual(t, escalated.CostEstimate, d.CostEstimate)
}

func TestCascadePassesThroughHighConfidence(t *testing.T) {
	d := Decision{Tier: TierHaiku, Confidence: 0.9}
	result := CascadeDecision(d, DefaultQualityThreshold)
	assert.Equal(t, d, result)
}

func TestCascadePassesThroughOpus(t *testing.T) {
	d := Decision{Tier: TierOpus, Confidence: 0.1}
	result := CascadeDecision(d, DefaultQualityThreshold)
	assert.Equal(t, d, result)
}
