package decay

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGammaSampleNonNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		for _, shape := range []float64{0.3, 0.9, 1.0, 2.5, 10.0} {
			v := GammaSample(rng, shape)
			assert.GreaterOrEqual(t, v, 0.0)
		}
	}
}

func TestGammaSampleMeanApproximatesShape(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	shape := 5.0
	var sum float64
	n := 20000
	for i := 0; i < n; i++ {
		sum += GammaSample(rng, shape)
	}
	mean := sum / float64(n)
	assert.InDelta(t, shape, mean, 0.2)
}

func TestBetaSampleBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for i := 0; i < 5000; i++ {
		v := BetaSample(rng, 2, 5)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestBetaSampleMeanApproximatesAlphaOverSum(t *testing.T) {
	rng := rand.New(rand.NewSource(123))
	alpha, beta := 3.0, 7.0
	var sum float64
	n := 30000
	for i := 0; i < n; i++ {
		sum += BetaSample(rng, alpha, beta)
	}
	mean := sum / float64(n)
	assert.InDelta(t, alpha/(alpha+beta), mean, 0.02)
}

func TestBetaSampleDeterministicWithSeededRNG(t *testing.T) {
	a := rand.New(rand.NewSource(555))
	b := rand.New(rand.NewSource(555))
	for i := 0; i < 50; i++ {
		assert.Equal(t, BetaSample(a, 2, 3), BetaSample(b, 2, 3))
	}
}
