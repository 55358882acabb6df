package turiya

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentitySolveReturnsB(t *testing.T) {
	m := IdentityMatrix8()
	b := Vector8{1, 2, 3, 4, 5, 6, 7, 8}
	x, err := m.Solve(b)
	assert.NoError(t, err)
	assert.Equal(t, b, x)
}

func TestAddOuterProductStaysPositiveDefinite(t *testing.T) {
	m := IdentityMatrix8()
	m.AddOuterProduct(Vector8{1, 0, 0, 0, 0, 0, 0, 1})
	m.AddOuterProduct(Vector8{0, 1, 1, 0, 0, 0, 0, 1})
	_, err := m.Solve(Vector8{1, 1, 1, 1, 1, 1, 1, 1})
	assert.NoError(t, err)
}

func TestFlattenUnflattenRoundTrip(t *testing.T) {
	m := IdentityMatrix8()
	m.AddOuterProduct(Vector8{1, 2, 3, 4, 5, 6, 7, 8})
	flat := m.Flatten()
	restored := Unflatten(flat)
	assert.Equal(t, m, restored)
}

func TestQuadraticFormIdentityIsNormSquared(t *testing.T) {
	m := IdentityMatrix8()
	x := Vector8{1, 0, 0, 0, 0, 0, 0, 0}
	q, err := m.QuadraticForm(x)
	assert.NoError(t, err)
	assert.InDelta(t, 1.0, q, 1e-9)
}
