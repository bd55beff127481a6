package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/codescout/codescout/internal/embedder"
	"github.com/codescout/codescout/internal/metrics"
	"github.com/codescout/codescout/internal/scanner"
	"github.com/codescout/codescout/internal/vecindex"
	"github.com/codescout/codescout/pkg/types"
)

// Engine errors
var (
	ErrIndexingInProgress = errors.New("indexing already in progress")
	ErrEmptyQuery         = errors.New("query cannot be empty")
)

// Defaults applied by Config.normalize.
const (
	DefaultBatchSize       = 50
	DefaultEmbedWorkers    = 4
	DefaultK               = 10
	DefaultMaxContextChars = 4000
)

// Config controls engine behavior.
type Config struct {
	SnapshotDir     string // "" disables snapshots
	BatchSize       int    // Texts per provider call
	EmbedWorkers    int    // Concurrent provider calls during indexing
	DefaultK        int    // Result count when the caller passes k <= 0
	MaxContextChars int    // FormatContext budget when the caller passes 0
}

func (c *Config) normalize() {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.EmbedWorkers <= 0 {
		c.EmbedWorkers = DefaultEmbedWorkers
	}
	if c.DefaultK <= 0 {
		c.DefaultK = DefaultK
	}
	if c.MaxContextChars <= 0 {
		c.MaxContextChars = DefaultMaxContextChars
	}
}

// IndexReport summarizes one IndexCodebase call.
type IndexReport struct {
	Skipped      bool // Already indexed and force was false
	FilesScanned int
	Functions    int
	Classes      int
	Structures   int // Named structures indexed (functions + classes)
	Documents    int // Every document indexed, whole-file entries included
	FailedFiles  int
	ScanMillis   float64
	EmbedMillis  float64
	BuildMillis  float64
	Duration     time.Duration
}

// SearchResult is the outcome of one query. Indexed is false when the
// engine has no index yet — an empty result with a status flag, not an
// error.
type SearchResult struct {
	Hits     []types.SearchHit
	Indexed  bool
	Duration time.Duration
}

// Engine coordinates scanner, embedder, index, and metrics.
type Engine struct {
	cfg      Config
	scanner  *scanner.Scanner
	embedder embedder.Embedder
	metrics  *metrics.Tracker
	logger   *zap.Logger
	guard    indexGuard

	// Progress, when set before IndexCodebase, receives embedding
	// progress as (documents embedded, total documents).
	Progress func(done, total int)

	mu      sync.Mutex // guards index pointer, indexed flag, lastReport
	index   *vecindex.FlatIndex
	indexed bool
	last    *IndexReport
}

// New constructs an engine. This is the explicit initialization step:
// the index is created at the provider's dimension and any configuration
// problem surfaces here.
func New(cfg Config, sc *scanner.Scanner, emb embedder.Embedder, logger *zap.Logger) (*Engine, error) {
	if sc == nil {
		return nil, errors.New("scanner is required")
	}
	if emb == nil {
		return nil, errors.New("embedder is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.normalize()

	ix, err := vecindex.New(emb.Dimension())
	if err != nil {
		return nil, fmt.Errorf("creating index: %w", err)
	}

	return &Engine{
		cfg:      cfg,
		scanner:  sc,
		embedder: emb,
		metrics:  metrics.New(),
		logger:   logger,
		index:    ix,
	}, nil
}

// LoadSnapshot restores a previously persisted index from the configured
// snapshot directory. On success the engine is immediately searchable,
// and a skipped reindex reports the restored document count: scan and
// timing figures belong to the process that built the snapshot and are
// not persisted.
func (e *Engine) LoadSnapshot() error {
	if e.cfg.SnapshotDir == "" {
		return errors.New("no snapshot directory configured")
	}

	ix, err := vecindex.New(e.embedder.Dimension())
	if err != nil {
		return err
	}
	if err := ix.Load(e.cfg.SnapshotDir); err != nil {
		return err
	}
	stats := ix.Stats()
	if stats.Dimension != e.embedder.Dimension() {
		return fmt.Errorf("snapshot dimension %d does not match provider dimension %d",
			stats.Dimension, e.embedder.Dimension())
	}

	e.mu.Lock()
	e.index = ix
	e.indexed = true
	e.last = &IndexReport{Documents: stats.Count}
	e.mu.Unlock()
	return nil
}

// IndexCodebase builds the index from the source tree at root. When the
// engine is already indexed and force is false the call is a no-op
// returning the previous report with Skipped set. The pipeline is
// scan → embed (batched, concurrent) → build → snapshot; a hard failure
// at any stage leaves the previously committed index untouched.
func (e *Engine) IndexCodebase(ctx context.Context, root string, force bool) (*IndexReport, error) {
	if !e.guard.tryAcquire() {
		return nil, ErrIndexingInProgress
	}
	defer e.guard.release()

	e.mu.Lock()
	if e.indexed && !force && e.last != nil {
		report := *e.last
		report.Skipped = true
		e.mu.Unlock()
		return &report, nil
	}
	e.mu.Unlock()

	start := time.Now()

	scanStart := time.Now()
	docs, scanStats, err := e.scanner.ScanDocuments(root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	scanMillis := float64(time.Since(scanStart).Microseconds()) / 1000.0

	embedStart := time.Now()
	vectors, err := e.embedAll(ctx, docs)
	if err != nil {
		return nil, err
	}
	embedMillis := float64(time.Since(embedStart).Microseconds()) / 1000.0

	buildStart := time.Now()
	fresh, err := vecindex.New(e.embedder.Dimension())
	if err != nil {
		return nil, err
	}
	if len(docs) > 0 {
		if err := fresh.Add(vectors, docs); err != nil {
			return nil, fmt.Errorf("building index: %w", err)
		}
	}
	if e.cfg.SnapshotDir != "" {
		if err := fresh.Save(e.cfg.SnapshotDir); err != nil {
			return nil, fmt.Errorf("saving snapshot: %w", err)
		}
	}
	buildMillis := float64(time.Since(buildStart).Microseconds()) / 1000.0

	report := &IndexReport{
		FilesScanned: scanStats.FilesScanned,
		Functions:    scanStats.Functions,
		Classes:      scanStats.Classes,
		Structures:   scanStats.Functions + scanStats.Classes,
		Documents:    len(docs),
		FailedFiles:  scanStats.Failed,
		ScanMillis:   scanMillis,
		EmbedMillis:  embedMillis,
		BuildMillis:  buildMillis,
		Duration:     time.Since(start),
	}

	e.mu.Lock()
	e.index = fresh
	e.indexed = true
	e.last = report
	e.mu.Unlock()

	e.metrics.RecordIndexing(metrics.IndexingStats{
		ScanMillis:        scanMillis,
		EmbedMillis:       embedMillis,
		BuildMillis:       buildMillis,
		FilesScanned:      scanStats.FilesScanned,
		FunctionsIndexed:  scanStats.Functions,
		ClassesIndexed:    scanStats.Classes,
		StructuresIndexed: scanStats.Functions + scanStats.Classes,
	})

	e.logger.Info("indexing complete",
		zap.Int("files", scanStats.FilesScanned),
		zap.Int("structures", len(docs)),
		zap.Duration("duration", report.Duration))

	return report, nil
}

// embedAll embeds every document's rendered text in batches. Batches run
// concurrently under an errgroup; the first hard provider error cancels
// the rest and aborts the whole operation.
func (e *Engine) embedAll(ctx context.Context, docs []types.Document) ([][]float32, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	texts := make([]string, len(docs))
	for i := range docs {
		texts[i] = renderEmbedText(&docs[i])
	}

	vectors := make([][]float32, len(docs))
	var done int
	var progressMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.EmbedWorkers)

	for offset := 0; offset < len(texts); offset += e.cfg.BatchSize {
		lo, hi := offset, offset+e.cfg.BatchSize
		if hi > len(texts) {
			hi = len(texts)
		}
		g.Go(func() error {
			batch, err := e.embedder.EmbedBatch(gctx, texts[lo:hi])
			if err != nil {
				return fmt.Errorf("embedding documents %d-%d: %w", lo, hi-1, err)
			}
			copy(vectors[lo:hi], batch)

			if e.Progress != nil {
				progressMu.Lock()
				done += hi - lo
				e.Progress(done, len(texts))
				progressMu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// Search embeds the query and returns up to k hits ranked by ascending
// distance, optionally filtered by document kind. The index is over-
// fetched at 2k so kind filtering can still fill k slots; if fewer
// survive, fewer are returned — never padded. One latency sample is
// recorded per call.
func (e *Engine) Search(ctx context.Context, query string, k int, filter types.DocumentKind) (*SearchResult, error) {
	start := time.Now()

	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if k <= 0 {
		k = e.cfg.DefaultK
	}

	e.mu.Lock()
	ix, indexed := e.index, e.indexed
	e.mu.Unlock()

	if !indexed {
		result := &SearchResult{Hits: []types.SearchHit{}, Indexed: false, Duration: time.Since(start)}
		e.recordSearch(result.Duration, k, filter)
		return result, nil
	}

	queryVec, err := e.embedder.EmbedOne(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	matches, err := ix.Search(queryVec, k*2)
	if err != nil {
		return nil, err
	}

	hits := make([]types.SearchHit, 0, k)
	for _, m := range matches {
		if filter != "" && m.Document.Kind != filter {
			continue
		}
		hits = append(hits, types.NewSearchHit(m.Document, m.Distance))
		if len(hits) == k {
			break
		}
	}

	result := &SearchResult{Hits: hits, Indexed: true, Duration: time.Since(start)}
	e.recordSearch(result.Duration, k, filter)
	return result, nil
}

// Remove deletes entries by ordinal, persisting the rebuilt index when
// snapshots are enabled. It shares the indexing guard with IndexCodebase
// so the saved snapshot always reflects the index the removal ran
// against.
func (e *Engine) Remove(ordinals []int) (int, error) {
	if !e.guard.tryAcquire() {
		return 0, ErrIndexingInProgress
	}
	defer e.guard.release()

	e.mu.Lock()
	ix := e.index
	e.mu.Unlock()

	removed, err := ix.Remove(ordinals)
	if err != nil {
		return 0, err
	}
	if e.cfg.SnapshotDir != "" {
		if err := ix.Save(e.cfg.SnapshotDir); err != nil {
			return removed, fmt.Errorf("saving snapshot after removal: %w", err)
		}
	}
	return removed, nil
}

// IndexStats exposes the current index shape.
func (e *Engine) IndexStats() vecindex.Stats {
	e.mu.Lock()
	ix := e.index
	e.mu.Unlock()
	return ix.Stats()
}

// Indexed reports whether the engine holds a built index.
func (e *Engine) Indexed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.indexed
}

// Metrics returns a point-in-time metrics snapshot.
func (e *Engine) Metrics() metrics.Report {
	return e.metrics.Report()
}

// Close releases the embedding provider.
func (e *Engine) Close() error {
	return e.embedder.Close()
}

func (e *Engine) recordSearch(d time.Duration, k int, filter types.DocumentKind) {
	e.metrics.RecordSearch(float64(d.Microseconds())/1000.0, k, string(filter))
}

// renderEmbedText flattens a document into the string handed to the
// embedding provider: kind, name, docstring, path, and code excerpt,
// each present only when the document has it.
func renderEmbedText(doc *types.Document) string {
	var b strings.Builder
	b.WriteString(string(doc.Kind))
	if doc.Name != "" {
		b.WriteString(": ")
		b.WriteString(doc.Name)
	}
	if doc.Docstring != "" {
		b.WriteString("\n")
		b.WriteString(doc.Docstring)
	}
	if doc.Path != "" {
		b.WriteString("\npath: ")
		b.WriteString(doc.Path)
	}
	if doc.Code != "" {
		b.WriteString("\n")
		b.WriteString(doc.Code)
	}
	return b.String()
}
