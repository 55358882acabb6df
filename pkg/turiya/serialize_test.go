package turiya

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// P7 (serialize round-trip)
func TestSerializeDeserializeRoundTripEmitsIdenticalDecisions(t *testing.T) {
	cfg := DefaultConfig()
	r1 := NewRouter(cfg)
	ctx := Context{Complexity: 0.5, Urgency: 0.4}
	for i := uint64(0); i < 12; i++ {
		d := r1.Classify(ctx)
		r1.RecordOutcome(d, 0.6)
	}

	state := r1.Serialize()
	r2 := Deserialize(cfg, state)

	inputs := []Context{
		{Complexity: 0.5, Urgency: 0.4},
		{Complexity: 0.9, Urgency: 0.1},
		{Complexity: 0.1, Urgency: 0.9},
	}
	for _, ctx := range inputs {
		d1 := r1.Classify(ctx)
		d2 := r2.Classify(ctx)
		assert.Equal(t, d1.Tier, d2.Tier)
		assert.InDelta(t, d1.Confidence, d2.Confidence, 1e-9)
	}
}

func TestDeserializeClampsIllTypedFields(t *testing.T) {
	state := State{
		Schema: 1,
		Arms: [4]ArmState{
			{Tier: TierNoLLM, Alpha: -5, Beta: 0, AFlat: IdentityMatrix8().Flatten()},
			{Tier: TierHaiku, Alpha: 1, Beta: 1, AFlat: IdentityMatrix8().Flatten()},
			{Tier: TierSonnet, Alpha: 1, Beta: 1, AFlat: IdentityMatrix8().Flatten()},
			{Tier: TierOpus, Alpha: 1, Beta: 1, AFlat: IdentityMatrix8().Flatten()},
		},
	}
	r := Deserialize(DefaultConfig(), state)
	stats := r.Stats()
	assert.GreaterOrEqual(t, stats.PerTier[0].Alpha, 1.0)
	assert.GreaterOrEqual(t, stats.PerTier[0].Beta, 1.0)
}
