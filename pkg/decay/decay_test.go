package decay

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecayFactorBoundaries(t *testing.T) {
	assert.InDelta(t, 1.0, DecayFactor(0, 3600_000), 1e-10)
	assert.InDelta(t, 0.5, DecayFactor(3600_000, 3600_000), 1e-9)
	assert.InDelta(t, 1.0, DecayFactor(-500, 3600_000), 1e-10, "negative elapsed clamps to 0")
}

func TestDecayFactorMonotone(t *testing.T) {
	halfLife := 1000.0
	prev := DecayFactor(0, halfLife)
	for elapsed := 100.0; elapsed <= 10000.0; elapsed += 100 {
		cur := DecayFactor(elapsed, halfLife)
		assert.LessOrEqual(t, cur, prev+1e-12)
		prev = cur
	}
}

// P1 (decay semigroup): decay(a+b) ~= decay(a)*decay(b).
func TestDecaySemigroup(t *testing.T) {
	halfLife := 7200.0
	pairs := [][2]float64{{0, 0}, {100, 200}, {5000, 0}, {1234.5, 6789.1}}
	for _, p := range pairs {
		a, b := p[0], p[1]
		lhs := DecayFactor(a+b, halfLife)
		rhs := DecayFactor(a, halfLife) * DecayFactor(b, halfLife)
		assert.InDelta(t, lhs, rhs, 1e-10)
	}
}

func TestRRFScore(t *testing.T) {
	assert.InDelta(t, 1.0/61.0, RRFScore(1, DefaultRRFK), 1e-9)
	assert.InDelta(t, 1.0/62.0, RRFScore(2, DefaultRRFK), 1e-9)
	assert.InDelta(t, 1.0/61.0, RRFScore(1, 0), 1e-9, "k<=0 defaults to 60")
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-5))
	assert.Equal(t, 1.0, Clamp01(5))
	assert.Equal(t, 0.5, Clamp01(0.5))
}

func TestClampRate(t *testing.T) {
	assert.Equal(t, 1.0, ClampRate(-5, 1, 100))
	assert.Equal(t, 100.0, ClampRate(500, 1, 100))
	assert.Equal(t, 50.0, ClampRate(50, 1, 100))
}

func TestDecayFactorZeroHalfLife(t *testing.T) {
	assert.Equal(t, 0.0, DecayFactor(1, 0))
}

func TestDecayFactorApproachesZero(t *testing.T) {
	v := DecayFactor(100_000, 1000)
	assert.True(t, v >= 0 && v < 1e-10)
	assert.False(t, math.IsNaN(v))
}
