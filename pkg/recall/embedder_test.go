package recall

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashEmbedDeterministic(t *testing.T) {
	a := HashEmbed("hello world")
	b := HashEmbed("hello world")
	assert.Equal(t, a, b)
}

func TestHashEmbedDistinctForDistinctText(t *testing.T) {
	a := HashEmbed("hello world")
	b := HashEmbed("goodbye world")
	assert.NotEqual(t, a, b)
}

func TestHashEmbedDimensions(t *testing.T) {
	v := HashEmbed("anything")
	assert.Len(t, v, FallbackDimensions)
}

func TestHashEmbedUnitNorm(t *testing.T) {
	v := HashEmbed("norm check")
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, sumSq, 1e-4)
}
