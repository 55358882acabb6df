package decay

import "math"

// RNG is the minimal source of randomness gammaSample/betaSample need. A
// *math/rand.Rand satisfies this; tests inject a seeded one for
// deterministic replay of sampling sequences.
type RNG interface {
	Float64() float64
	NormFloat64() float64
}

// GammaSample draws one sample from Gamma(shape, 1) using Marsaglia-Tsang.
// For shape < 1 it uses the standard shape+1 transform:
// if X ~ Gamma(shape+1), U ~ Uniform(0,1), then X*U^(1/shape) ~ Gamma(shape).
func GammaSample(rng RNG, shape float64) float64 {
	if shape <= 0 {
		return 0
	}
	if shape < 1 {
		u := rng.Float64()
		return GammaSample(rng, shape+1) * math.Pow(u, 1.0/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)

	for {
		var x, v float64
		for {
			x = rng.NormFloat64()
			v = 1.0 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := rng.Float64()
		x2 := x * x

		if u < 1.0-0.0331*x2*x2 {
			return d * v
		}
		if math.Log(u) < 0.5*x2+d*(1.0-v+math.Log(v)) {
			return d * v
		}
	}
}

// BetaSample draws one sample from Beta(alpha, beta) via two independent
// Gamma draws: X ~ Gamma(alpha), Y ~ Gamma(beta), X/(X+Y) ~ Beta(alpha,beta).
func BetaSample(rng RNG, alpha, beta float64) float64 {
	if alpha <= 0 {
		alpha = 1e-9
	}
	if beta <= 0 {
		beta = 1e-9
	}
	x := GammaSample(rng, alpha)
	y := GammaSample(rng, beta)
	if x+y == 0 {
		return 0.5
	}
	return x / (x + y)
}
