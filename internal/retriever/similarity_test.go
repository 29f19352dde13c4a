package retriever

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity_Identical(t *testing.T) {
	v := []float32{0.3, -1.2, 4.5, 0.01}
	assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-9)
}

func TestCosineSimilarity_Opposite(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{-1, -2, -3}
	assert.InDelta(t, -1.0, CosineSimilarity(a, b), 1e-9)
}

func TestCosineSimilarity_Orthogonal(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	assert.InDelta(t, 0.0, CosineSimilarity(a, b), 1e-9)
}

func TestCosineSimilarity_Symmetric(t *testing.T) {
	a := []float32{0.5, 1.5, -2.0}
	b := []float32{3.0, -0.25, 0.75}
	assert.Equal(t, CosineSimilarity(a, b), CosineSimilarity(b, a))
}

func TestCosineSimilarity_ZeroVector(t *testing.T) {
	a := []float32{0, 0, 0}
	b := []float32{1, 2, 3}
	assert.Equal(t, 0.0, CosineSimilarity(a, b))
	assert.Equal(t, 0.0, CosineSimilarity(b, a))
	assert.Equal(t, 0.0, CosineSimilarity(a, a))
}

func TestCosineSimilarity_LengthMismatch(t *testing.T) {
	a := []float32{1, 2}
	b := []float32{1, 2, 3}
	assert.Equal(t, 0.0, CosineSimilarity(a, b))
}

func TestCosineSimilarity_Empty(t *testing.T) {
	assert.Equal(t, 0.0, CosineSimilarity(nil, nil))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{}, []float32{}))
}

func TestCosineSimilarity_ScaleInvariant(t *testing.T) {
	a := []float32{1, 2, 3}
	scaled := []float32{10, 20, 30}
	b := []float32{0.4, -0.7, 2.2}
	assert.InDelta(t, CosineSimilarity(a, b), CosineSimilarity(scaled, b), 1e-9)
}

func TestCosineSimilarity_Bounded(t *testing.T) {
	a := []float32{0.123, -4.56, 7.89, 0.0001}
	b := []float32{-9.87, 6.54, -3.21, 100}
	score := CosineSimilarity(a, b)
	assert.LessOrEqual(t, math.Abs(score), 1.0+1e-9)
}

func TestMagnitude(t *testing.T) {
	assert.InDelta(t, 5.0, magnitude([]float32{3, 4}), 1e-9)
	assert.Equal(t, 0.0, magnitude([]float32{0, 0}))
	assert.Equal(t, 0.0, magnitude(nil))
}
