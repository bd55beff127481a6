package embedder

import (
	"fmt"
	"math"
)

// Metric selects the similarity measure.
type Metric string

const (
	MetricCosine Metric = "cosine"
	MetricDot    Metric = "dot"
	MetricL2     Metric = "l2"
)

// Similarity computes a higher-is-more-similar score between two equal
// length vectors. For MetricL2 the Euclidean distance is folded through
// 1/(1+d) so the score stays comparable in direction to the other metrics.
func Similarity(a, b []float32, metric Metric) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrInvalidInput, len(a), len(b))
	}

	switch metric {
	case MetricCosine:
		return cosine(a, b), nil
	case MetricDot:
		return dot(a, b), nil
	case MetricL2:
		return 1.0 / (1.0 + math.Sqrt(l2Squared(a, b))), nil
	default:
		return 0, fmt.Errorf("%w: unknown metric %q", ErrInvalidInput, metric)
	}
}

// BatchSimilarity scores a query against every row of a matrix.
func BatchSimilarity(query []float32, matrix [][]float32, metric Metric) ([]float64, error) {
	scores := make([]float64, len(matrix))
	for i, row := range matrix {
		s, err := Similarity(query, row, metric)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		scores[i] = s
	}
	return scores, nil
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func cosine(a, b []float32) float64 {
	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

func l2Squared(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// NormalizeVector scales a vector to unit length. Zero vectors are
// returned unchanged.
func NormalizeVector(v []float32) []float32 {
	var sum float64
	for _, val := range v {
		sum += float64(val) * float64(val)
	}
	if sum == 0 {
		return v
	}

	norm := float32(math.Sqrt(sum))
	out := make([]float32, len(v))
	for i, val := range v {
		out[i] = val / norm
	}
	return out
}
