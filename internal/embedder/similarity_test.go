package embedder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name   string
		a, b   []float32
		metric Metric
		want   float64
	}{
		{"cosine identical", []float32{1, 0}, []float32{1, 0}, MetricCosine, 1},
		{"cosine orthogonal", []float32{1, 0}, []float32{0, 1}, MetricCosine, 0},
		{"cosine opposite", []float32{1, 0}, []float32{-1, 0}, MetricCosine, -1},
		{"cosine zero vector", []float32{0, 0}, []float32{1, 0}, MetricCosine, 0},
		{"dot", []float32{1, 2}, []float32{3, 4}, MetricDot, 11},
		{"l2 identical", []float32{1, 2}, []float32{1, 2}, MetricL2, 1},
		{"l2 unit apart", []float32{0, 0}, []float32{1, 0}, MetricL2, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Similarity(tt.a, tt.b, tt.metric)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestSimilarityErrors(t *testing.T) {
	_, err := Similarity([]float32{1}, []float32{1, 2}, MetricCosine)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = Similarity([]float32{1}, []float32{2}, Metric("bogus"))
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestBatchSimilarity(t *testing.T) {
	query := []float32{1, 0}
	matrix := [][]float32{{1, 0}, {0, 1}, {-1, 0}}

	scores, err := BatchSimilarity(query, matrix, MetricCosine)
	require.NoError(t, err)
	require.Len(t, scores, 3)
	assert.InDelta(t, 1, scores[0], 1e-9)
	assert.InDelta(t, 0, scores[1], 1e-9)
	assert.InDelta(t, -1, scores[2], 1e-9)
}

func TestNormalizeVector(t *testing.T) {
	v := NormalizeVector([]float32{3, 4})
	assert.InDelta(t, 0.6, float64(v[0]), 1e-6)
	assert.InDelta(t, 0.8, float64(v[1]), 1e-6)

	zero := []float32{0, 0}
	assert.Equal(t, zero, NormalizeVector(zero))
}
