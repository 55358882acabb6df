package hybrid

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeightLearnerSampleSumsToOne(t *testing.T) {
	w := NewWeightLearner()
	rng := rand.New(rand.NewSource(1))
	weights := w.Sample(rng)
	var sum float64
	for _, v := range weights {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestWeightLearnerUpdateMovesMeans(t *testing.T) {
	w := NewWeightLearner()
	before := w.Means()[SourceBM25]
	for i := 0; i < 20; i++ {
		w.Update(SourceBM25, true)
	}
	after := w.Means()[SourceBM25]
	assert.Greater(t, after, before)
}

func TestWeightLearnerSerializeRoundTrip(t *testing.T) {
	w := NewWeightLearner()
	w.Update(SourceBM25, true)
	w.Update(SourceVector, false)
	state := w.Serialize()

	w2 := NewWeightLearner()
	w2.Deserialize(state)
	assert.Equal(t, w.Means(), w2.Means())
	assert.Equal(t, state.TotalFeedback, w2.Serialize().TotalFeedback)
}

func TestWeightLearnerMeansAllStartAtHalf(t *testing.T) {
	w := NewWeightLearner()
	for _, m := range w.Means() {
		assert.InDelta(t, 0.5, m, 1e-9)
	}
}
