package vecindex

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codescout/codescout/pkg/types"
)

func makeDoc(i int) types.Document {
	return types.Document{
		Kind: types.DocFunction,
		Name: fmt.Sprintf("Func%d", i),
		Path: fmt.Sprintf("pkg/file%d.go", i),
		Line: i + 1,
	}
}

// axisVectors returns n vectors where vector i is i along the first axis,
// so ordinal i sits at distance (q-i)^2 from a query at q.
func axisVectors(n, dim int) [][]float32 {
	vectors := make([][]float32, n)
	for i := range vectors {
		v := make([]float32, dim)
		v[0] = float32(i)
		vectors[i] = v
	}
	return vectors
}

func makeDocs(n int) []types.Document {
	docs := make([]types.Document, n)
	for i := range docs {
		docs[i] = makeDoc(i)
	}
	return docs
}

func TestNewRejectsBadDimension(t *testing.T) {
	tests := []struct {
		name string
		dim  int
	}{
		{"zero", 0},
		{"negative", -4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.dim)
			require.ErrorIs(t, err, ErrInvalidDimension)
		})
	}
}

func TestAddValidatesWholeBatch(t *testing.T) {
	ix, err := New(4)
	require.NoError(t, err)

	require.NoError(t, ix.Add(axisVectors(2, 4), makeDocs(2)))
	require.Equal(t, 2, ix.Stats().Count)

	// One bad vector in the middle must reject the entire batch.
	bad := axisVectors(3, 4)
	bad[1] = []float32{1, 2, 3}
	err = ix.Add(bad, makeDocs(3))
	require.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Equal(t, 2, ix.Stats().Count, "failed batch must leave count unchanged")

	err = ix.Add(axisVectors(3, 4), makeDocs(2))
	require.ErrorIs(t, err, ErrCountMismatch)
	assert.Equal(t, 2, ix.Stats().Count)
}

func TestSearchOrdering(t *testing.T) {
	ix, err := New(4)
	require.NoError(t, err)
	require.NoError(t, ix.Add(axisVectors(5, 4), makeDocs(5)))

	query := make([]float32, 4)
	query[0] = 3.1 // nearest ordinals: 3, 4 (or 2), ...

	matches, err := ix.Search(query, 3)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	assert.Equal(t, 3, matches[0].Ordinal)
	for i := 1; i < len(matches); i++ {
		assert.LessOrEqual(t, matches[i-1].Distance, matches[i].Distance)
	}
	assert.Equal(t, "Func3", matches[0].Document.Name)
}

func TestSearchClampsK(t *testing.T) {
	ix, err := New(4)
	require.NoError(t, err)
	require.NoError(t, ix.Add(axisVectors(3, 4), makeDocs(3)))

	matches, err := ix.Search(make([]float32, 4), 10)
	require.NoError(t, err)
	assert.Len(t, matches, 3, "k beyond the index size returns every entry")
}

func TestSearchEmptyIndex(t *testing.T) {
	ix, err := New(4)
	require.NoError(t, err)

	matches, err := ix.Search(make([]float32, 4), 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSearchRejectsWrongWidth(t *testing.T) {
	ix, err := New(4)
	require.NoError(t, err)
	require.NoError(t, ix.Add(axisVectors(1, 4), makeDocs(1)))

	_, err = ix.Search([]float32{1, 2}, 1)
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestBatchSearch(t *testing.T) {
	ix, err := New(4)
	require.NoError(t, err)
	require.NoError(t, ix.Add(axisVectors(5, 4), makeDocs(5)))

	q0 := make([]float32, 4)
	q1 := make([]float32, 4)
	q1[0] = 4

	results, err := ix.BatchSearch([][]float32{q0, q1}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 0, results[0][0].Ordinal)
	assert.Equal(t, 4, results[1][0].Ordinal)
}

func TestRemoveRebuildsOrdinals(t *testing.T) {
	ix, err := New(4)
	require.NoError(t, err)
	require.NoError(t, ix.Add(axisVectors(10, 4), makeDocs(10)))

	removed, err := ix.Remove([]int{1, 5, 8})
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
	assert.Equal(t, 7, ix.Stats().Count)

	// Survivors keep their original relative order under fresh ordinals.
	docs := ix.Documents()
	wantNames := []string{"Func0", "Func2", "Func3", "Func4", "Func6", "Func7", "Func9"}
	require.Len(t, docs, len(wantNames))
	for i, want := range wantNames {
		assert.Equal(t, want, docs[i].Name)
	}

	// Removed entries must never come back from a search.
	matches, err := ix.Search(make([]float32, 4), 10)
	require.NoError(t, err)
	for _, m := range matches {
		assert.NotContains(t, []string{"Func1", "Func5", "Func8"}, m.Document.Name)
	}
}

func TestRemoveOutOfRange(t *testing.T) {
	ix, err := New(4)
	require.NoError(t, err)
	require.NoError(t, ix.Add(axisVectors(3, 4), makeDocs(3)))

	tests := []struct {
		name     string
		ordinals []int
	}{
		{"negative", []int{-1}},
		{"past end", []int{3}},
		{"mixed", []int{0, 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			removed, err := ix.Remove(tt.ordinals)
			require.ErrorIs(t, err, ErrOrdinalOutOfRange)
			assert.Zero(t, removed)
			assert.Equal(t, 3, ix.Stats().Count, "failed remove must not change the index")
		})
	}
}

func TestRemoveEmptyBatch(t *testing.T) {
	ix, err := New(4)
	require.NoError(t, err)
	require.NoError(t, ix.Add(axisVectors(2, 4), makeDocs(2)))

	removed, err := ix.Remove(nil)
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Equal(t, 2, ix.Stats().Count)
}

func TestClear(t *testing.T) {
	ix, err := New(4)
	require.NoError(t, err)
	require.NoError(t, ix.Add(axisVectors(5, 4), makeDocs(5)))

	ix.Clear()
	stats := ix.Stats()
	assert.Zero(t, stats.Count)
	assert.Equal(t, 4, stats.Dimension, "clear keeps the dimension")

	matches, err := ix.Search(make([]float32, 4), 3)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestConcurrentSearches(t *testing.T) {
	ix, err := New(8)
	require.NoError(t, err)
	require.NoError(t, ix.Add(axisVectors(50, 8), makeDocs(50)))

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			query := make([]float32, 8)
			query[0] = float32(w)
			for i := 0; i < 20; i++ {
				matches, err := ix.Search(query, 5)
				assert.NoError(t, err)
				assert.Len(t, matches, 5)
				assert.Equal(t, w, matches[0].Ordinal)
			}
		}(w)
	}
	wg.Wait()
}

func TestSquaredL2(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"unit apart", []float32{0, 0}, []float32{1, 0}, 1},
		{"pythagorean", []float32{0, 0}, []float32{3, 4}, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, squaredL2(tt.a, tt.b), 1e-9)
		})
	}
}
