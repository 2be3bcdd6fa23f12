package index

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity_SelfIsOne(t *testing.T) {
	v := []float32{0.3, 0.5, 0.2, 0.9}
	assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-5)
}

func TestCosineSimilarity_Orthogonal(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{0, 1, 0}
	assert.InDelta(t, 0.0, CosineSimilarity(a, b), 1e-6)
}

func TestCosineSimilarity_ZeroVector(t *testing.T) {
	a := []float32{0, 0, 0}
	b := []float32{1, 2, 3}
	assert.Zero(t, CosineSimilarity(a, b))
	assert.Zero(t, CosineSimilarity(b, a))
}

func TestCosineSimilarity_LengthMismatch(t *testing.T) {
	assert.Zero(t, CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}))
}

func TestCosineSimilarity_ScaleInvariant(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{2, 4, 6}
	assert.InDelta(t, 1.0, CosineSimilarity(a, b), 1e-5)
}

func TestNormalizeVector(t *testing.T) {
	v := NormalizeVector([]float32{3, 4})
	assert.InDelta(t, 0.6, float64(v[0]), 1e-6)
	assert.InDelta(t, 0.8, float64(v[1]), 1e-6)

	var magnitude float64
	for _, val := range v {
		magnitude += float64(val) * float64(val)
	}
	assert.InDelta(t, 1.0, math.Sqrt(magnitude), 1e-6)
}

func TestNormalizeVector_Zero(t *testing.T) {
	v := NormalizeVector([]float32{0, 0, 0})
	assert.Equal(t, []float32{0, 0, 0}, v)
}

func TestEuclideanDistance(t *testing.T) {
	a := []float32{0, 0}
	b := []float32{3, 4}
	assert.InDelta(t, 5.0, EuclideanDistance(a, b), 1e-6)
	assert.Zero(t, EuclideanDistance(b, b))
}

func TestEuclideanDistance_LengthMismatch(t *testing.T) {
	// Missing components count as zero
	a := []float32{3}
	b := []float32{3, 4}
	assert.InDelta(t, 4.0, EuclideanDistance(a, b), 1e-6)
}
