package vecindex

import (
	"fmt"
	"sort"
	"sync"

	"github.com/codescout/codescout/pkg/types"
)

// Match is one search result: the document stored at an ordinal and its
// squared Euclidean distance from the query.
type Match struct {
	Ordinal  int
	Document types.Document
	Distance float64
}

// Stats describes the current index shape.
type Stats struct {
	Count     int
	Dimension int
}

// FlatIndex is an exact k-NN vector store. Vectors are packed row-major
// into a single buffer; the document at ordinal i owns the slice
// vectors[i*dim : (i+1)*dim]. Both buffers are exclusively owned by the
// index and never handed out by reference.
type FlatIndex struct {
	mu      sync.Mutex
	dim     int
	vectors []float32
	docs    []types.Document
}

// New creates an empty index with a fixed vector dimension.
func New(dim int) (*FlatIndex, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDimension, dim)
	}
	return &FlatIndex{dim: dim}, nil
}

// Add appends vectors paired with their documents. The whole batch is
// validated before anything is appended: on any count or dimension
// mismatch the store is left unchanged.
func (ix *FlatIndex) Add(vectors [][]float32, docs []types.Document) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if len(vectors) != len(docs) {
		return fmt.Errorf("%w: %d vectors, %d documents", ErrCountMismatch, len(vectors), len(docs))
	}
	for i, v := range vectors {
		if len(v) != ix.dim {
			return fmt.Errorf("%w: expected %d, got %d at position %d", ErrDimensionMismatch, ix.dim, len(v), i)
		}
	}

	for _, v := range vectors {
		ix.vectors = append(ix.vectors, v...)
	}
	ix.docs = append(ix.docs, docs...)
	return nil
}

// Search returns the k nearest entries to query, sorted by ascending
// distance. k is clamped to the current size; an empty index yields an
// empty result, not an error.
func (ix *FlatIndex) Search(query []float32, k int) ([]Match, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.searchLocked(query, k)
}

// BatchSearch runs one independent top-k search per query under a single
// lock acquisition, so the result set reflects one consistent view of the
// index.
func (ix *FlatIndex) BatchSearch(queries [][]float32, k int) ([][]Match, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	for i, q := range queries {
		if len(q) != ix.dim {
			return nil, fmt.Errorf("%w: expected %d, got %d at query %d", ErrDimensionMismatch, ix.dim, len(q), i)
		}
	}

	results := make([][]Match, len(queries))
	for i, q := range queries {
		matches, err := ix.searchLocked(q, k)
		if err != nil {
			return nil, err
		}
		results[i] = matches
	}
	return results, nil
}

// searchLocked performs the exhaustive scan. Caller must hold ix.mu.
func (ix *FlatIndex) searchLocked(query []float32, k int) ([]Match, error) {
	if len(query) != ix.dim {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, ix.dim, len(query))
	}

	count := len(ix.docs)
	if count == 0 || k <= 0 {
		return []Match{}, nil
	}
	if k > count {
		k = count
	}

	candidates := make([]Match, count)
	for i := 0; i < count; i++ {
		row := ix.vectors[i*ix.dim : (i+1)*ix.dim]
		candidates[i] = Match{
			Ordinal:  i,
			Document: ix.docs[i],
			Distance: squaredL2(query, row),
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})

	return candidates[:k], nil
}

// Remove deletes the entries at the given ordinals and rebuilds the index
// from the survivors, reassigning ordinals 0..M-1 in original relative
// order. Ordinals have no native delete, so this is O(current size) —
// callers should batch deletions rather than call Remove in a loop. The
// returned count is the number of entries actually removed.
func (ix *FlatIndex) Remove(ordinals []int) (int, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if len(ordinals) == 0 {
		return 0, nil
	}

	doomed := make(map[int]struct{}, len(ordinals))
	for _, ord := range ordinals {
		if ord < 0 || ord >= len(ix.docs) {
			return 0, fmt.Errorf("%w: %d (size %d)", ErrOrdinalOutOfRange, ord, len(ix.docs))
		}
		doomed[ord] = struct{}{}
	}

	survivors := len(ix.docs) - len(doomed)
	vectors := make([]float32, 0, survivors*ix.dim)
	docs := make([]types.Document, 0, survivors)
	for i := range ix.docs {
		if _, gone := doomed[i]; gone {
			continue
		}
		vectors = append(vectors, ix.vectors[i*ix.dim:(i+1)*ix.dim]...)
		docs = append(docs, ix.docs[i])
	}

	ix.vectors = vectors
	ix.docs = docs
	return len(doomed), nil
}

// Clear reinitializes the index to empty at the same dimension.
func (ix *FlatIndex) Clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.vectors = nil
	ix.docs = nil
}

// Stats returns the current entry count and vector dimension.
func (ix *FlatIndex) Stats() Stats {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return Stats{Count: len(ix.docs), Dimension: ix.dim}
}

// Documents returns a copy of the ordered document list. Intended for
// diagnostics and tests; the returned slice does not alias index state.
func (ix *FlatIndex) Documents() []types.Document {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	out := make([]types.Document, len(ix.docs))
	copy(out, ix.docs)
	return out
}

// squaredL2 computes the squared Euclidean distance between two equal
// length vectors.
func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
