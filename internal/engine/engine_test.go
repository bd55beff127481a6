package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codescout/codescout/internal/embedder"
	"github.com/codescout/codescout/internal/scanner"
	"github.com/codescout/codescout/pkg/types"
)

const mathGoSrc = `package mathutil

// Add returns the sum of two numbers.
func Add(a, b int) int {
	return a + b
}

// Greet builds a friendly greeting.
func Greet(name string) string {
	return "hello " + name
}
`

const calcGoSrc = `package mathutil

// Calculator accumulates a running total.
type Calculator struct {
	total int
}
`

func writeCorpus(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "math.go"), []byte(mathGoSrc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "calc.go"), []byte(calcGoSrc), 0o644))
	return root
}

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	sc, err := scanner.New(scanner.Config{}, nil)
	require.NoError(t, err)
	emb := embedder.NewHashedProvider(64, nil)
	eng, err := New(cfg, sc, emb, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return eng
}

func indexedEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	eng := newTestEngine(t, cfg)
	_, err := eng.IndexCodebase(context.Background(), writeCorpus(t), false)
	require.NoError(t, err)
	return eng
}

func TestIndexCodebaseReport(t *testing.T) {
	eng := newTestEngine(t, Config{})

	report, err := eng.IndexCodebase(context.Background(), writeCorpus(t), false)
	require.NoError(t, err)

	assert.False(t, report.Skipped)
	assert.Equal(t, 2, report.FilesScanned)
	assert.Equal(t, 2, report.Functions)
	assert.Equal(t, 1, report.Classes)
	assert.Equal(t, 3, report.Structures)
	assert.Equal(t, 5, report.Documents, "2 whole-file documents plus 3 structures")
	assert.Zero(t, report.FailedFiles)

	stats := eng.IndexStats()
	assert.Equal(t, 5, stats.Count)
	assert.Equal(t, 64, stats.Dimension)
	assert.True(t, eng.Indexed())
}

func TestIndexCodebaseIdempotent(t *testing.T) {
	eng := newTestEngine(t, Config{})
	root := writeCorpus(t)
	ctx := context.Background()

	first, err := eng.IndexCodebase(ctx, root, false)
	require.NoError(t, err)

	second, err := eng.IndexCodebase(ctx, root, false)
	require.NoError(t, err)
	assert.True(t, second.Skipped)
	assert.Equal(t, first.FilesScanned, second.FilesScanned)
	assert.Equal(t, 5, eng.IndexStats().Count, "skipped reindex must not grow the index")
}

func TestIndexCodebaseForceRebuilds(t *testing.T) {
	eng := newTestEngine(t, Config{})
	root := writeCorpus(t)
	ctx := context.Background()

	_, err := eng.IndexCodebase(ctx, root, false)
	require.NoError(t, err)

	report, err := eng.IndexCodebase(ctx, root, true)
	require.NoError(t, err)
	assert.False(t, report.Skipped)
	assert.Equal(t, 5, eng.IndexStats().Count)
}

func TestIndexCodebaseGuard(t *testing.T) {
	eng := newTestEngine(t, Config{})

	require.True(t, eng.guard.tryAcquire())
	defer eng.guard.release()

	_, err := eng.IndexCodebase(context.Background(), writeCorpus(t), false)
	require.ErrorIs(t, err, ErrIndexingInProgress)
}

func TestSearchRanksMatchingFunctionFirst(t *testing.T) {
	eng := indexedEngine(t, Config{})

	result, err := eng.Search(context.Background(), "add two numbers", 1, "")
	require.NoError(t, err)
	require.True(t, result.Indexed)
	require.Len(t, result.Hits, 1)

	top := result.Hits[0]
	assert.Equal(t, types.DocFunction, top.Document.Kind)
	assert.Equal(t, "Add", top.Document.Name)
	assert.Greater(t, top.Relevance, 0.0)
	assert.LessOrEqual(t, top.Relevance, 1.0)
}

func TestSearchOrderingAndRelevance(t *testing.T) {
	eng := indexedEngine(t, Config{})

	result, err := eng.Search(context.Background(), "calculator running total", 5, "")
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)

	for i := 1; i < len(result.Hits); i++ {
		assert.LessOrEqual(t, result.Hits[i-1].Distance, result.Hits[i].Distance)
	}
	for _, hit := range result.Hits {
		assert.InDelta(t, 1.0/(1.0+hit.Distance), hit.Relevance, 1e-9)
	}
}

func TestSearchKindFilter(t *testing.T) {
	eng := indexedEngine(t, Config{})

	result, err := eng.Search(context.Background(), "calculator", 10, types.DocClass)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1, "only one class exists; results are never padded")
	assert.Equal(t, "Calculator", result.Hits[0].Document.Name)

	result, err = eng.Search(context.Background(), "anything", 10, types.DocFunction)
	require.NoError(t, err)
	assert.Len(t, result.Hits, 2)
	for _, hit := range result.Hits {
		assert.Equal(t, types.DocFunction, hit.Document.Kind)
	}
}

func TestSearchBeforeIndexing(t *testing.T) {
	eng := newTestEngine(t, Config{})

	result, err := eng.Search(context.Background(), "anything at all", 5, "")
	require.NoError(t, err, "searching an un-indexed engine is a status, not an error")
	assert.False(t, result.Indexed)
	assert.Empty(t, result.Hits)

	// The attempt still counts as a latency sample.
	assert.Equal(t, 1, eng.Metrics().Search.Count)
}

func TestSearchEmptyQuery(t *testing.T) {
	eng := newTestEngine(t, Config{})

	for _, query := range []string{"", "   ", "\t\n"} {
		_, err := eng.Search(context.Background(), query, 5, "")
		require.ErrorIs(t, err, ErrEmptyQuery)
	}
}

func TestSearchDefaultK(t *testing.T) {
	eng := indexedEngine(t, Config{DefaultK: 2})

	result, err := eng.Search(context.Background(), "greet hello", 0, "")
	require.NoError(t, err)
	assert.Len(t, result.Hits, 2)
}

func TestSearchRecordsMetrics(t *testing.T) {
	eng := indexedEngine(t, Config{})
	ctx := context.Background()

	_, err := eng.Search(ctx, "add", 5, types.DocFunction)
	require.NoError(t, err)
	_, err = eng.Search(ctx, "calc", 3, "")
	require.NoError(t, err)

	report := eng.Metrics()
	assert.Equal(t, 2, report.Search.Count)
	assert.Equal(t, 1, report.QueryPatterns.ByFilter["function"])
	assert.Equal(t, 1, report.QueryPatterns.ByFilter["none"])
	assert.Equal(t, 1, report.QueryPatterns.ByK[5])
	assert.Equal(t, 1, report.QueryPatterns.ByK[3])

	assert.Equal(t, 1, report.Indexing.Runs)
	assert.Equal(t, 2, report.Indexing.FilesScanned)
	assert.Equal(t, 3, report.Indexing.StructuresIndexed)
}

func TestRemoveShrinksIndex(t *testing.T) {
	eng := indexedEngine(t, Config{})

	removed, err := eng.Remove([]int{0, 2})
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 3, eng.IndexStats().Count)
}

func TestSnapshotRoundTrip(t *testing.T) {
	snapDir := filepath.Join(t.TempDir(), "snap")

	eng := indexedEngine(t, Config{SnapshotDir: snapDir})
	want, err := eng.Search(context.Background(), "add two numbers", 3, "")
	require.NoError(t, err)

	restored := newTestEngine(t, Config{SnapshotDir: snapDir})
	require.NoError(t, restored.LoadSnapshot())
	assert.True(t, restored.Indexed())
	assert.Equal(t, eng.IndexStats(), restored.IndexStats())

	got, err := restored.Search(context.Background(), "add two numbers", 3, "")
	require.NoError(t, err)
	require.Equal(t, len(want.Hits), len(got.Hits))
	for i := range want.Hits {
		assert.Equal(t, want.Hits[i].Document.Name, got.Hits[i].Document.Name)
		assert.InDelta(t, want.Hits[i].Distance, got.Hits[i].Distance, 1e-6)
	}
}

func TestIndexCodebaseSkipsAfterLoadSnapshot(t *testing.T) {
	snapDir := filepath.Join(t.TempDir(), "snap")
	indexedEngine(t, Config{SnapshotDir: snapDir})

	restored := newTestEngine(t, Config{SnapshotDir: snapDir})
	require.NoError(t, restored.LoadSnapshot())

	report, err := restored.IndexCodebase(context.Background(), writeCorpus(t), false)
	require.NoError(t, err, "a restored engine must treat a non-forced reindex as a skip")
	assert.True(t, report.Skipped)
	assert.Equal(t, 5, report.Documents, "the skip report carries the restored document count")
	assert.Zero(t, report.FilesScanned, "scan figures belong to the run that built the snapshot")
}

func TestRemoveWhileIndexing(t *testing.T) {
	eng := indexedEngine(t, Config{})

	require.True(t, eng.guard.tryAcquire())
	defer eng.guard.release()

	_, err := eng.Remove([]int{0})
	require.ErrorIs(t, err, ErrIndexingInProgress)
	assert.Equal(t, 5, eng.IndexStats().Count, "a refused removal must not change the index")
}

func TestLoadSnapshotWithoutDirectory(t *testing.T) {
	eng := newTestEngine(t, Config{})
	require.Error(t, eng.LoadSnapshot())
}

func TestProgressCallback(t *testing.T) {
	eng := newTestEngine(t, Config{BatchSize: 2})

	var lastDone, lastTotal int
	eng.Progress = func(done, total int) {
		lastDone, lastTotal = done, total
	}

	_, err := eng.IndexCodebase(context.Background(), writeCorpus(t), false)
	require.NoError(t, err)
	assert.Equal(t, 5, lastTotal)
	assert.Equal(t, lastTotal, lastDone, "progress must end at done == total")
}

func TestRenderEmbedText(t *testing.T) {
	doc := types.Document{
		Kind:      types.DocFunction,
		Name:      "Add",
		Path:      "math.go",
		Docstring: "Add returns the sum.",
		Code:      "func Add(a, b int) int { return a + b }",
	}
	text := renderEmbedText(&doc)
	assert.Contains(t, text, "function: Add")
	assert.Contains(t, text, "Add returns the sum.")
	assert.Contains(t, text, "path: math.go")
	assert.Contains(t, text, "func Add")
}
