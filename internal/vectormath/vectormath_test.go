package vectormath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	v := Normalize([]float32{3, 4})

	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)
	assert.True(t, IsNormalized(v, 1e-6))
}

func TestNormalize_ZeroVector(t *testing.T) {
	v := Normalize([]float32{0, 0, 0})

	assert.Equal(t, []float32{0, 0, 0}, v)
}

func TestNormalize_AlreadyUnit(t *testing.T) {
	v := Normalize([]float32{1, 0, 0})

	assert.Equal(t, []float32{1, 0, 0}, v)
}

func TestDot(t *testing.T) {
	assert.InDelta(t, 1.0, Dot([]float32{1, 0}, []float32{1, 0}), 1e-9)
	assert.InDelta(t, 0.0, Dot([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, Dot([]float32{1, 0}, []float32{-1, 0}), 1e-9)
}
