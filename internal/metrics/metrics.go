// Package metrics tracks running latency statistics for the search engine.
//
// Search latency is the first-class concern: every completed search
// records one sample, and the tracker reports min/max/mean, sorted-on-
// demand percentiles, and the share of searches finishing under the 500ms
// budget. Indexing-phase timings and corpus counts are tracked separately.
package metrics

import (
	"math"
	"sort"
	"sync"
)

// SLABudgetMillis is the latency budget a search is expected to meet.
const SLABudgetMillis = 500.0

// Sample is one recorded search latency, tagged with the requested result
// count and the kind filter in effect ("" for unfiltered).
type Sample struct {
	Millis float64
	K      int
	Filter string
}

// IndexingStats describes the most recent indexing run.
type IndexingStats struct {
	Runs              int     `json:"runs"`
	ScanMillis        float64 `json:"scan_ms"`
	EmbedMillis       float64 `json:"embed_ms"`
	BuildMillis       float64 `json:"build_ms"`
	FilesScanned      int     `json:"files_scanned"`
	FunctionsIndexed  int     `json:"functions_indexed"`
	ClassesIndexed    int     `json:"classes_indexed"`
	StructuresIndexed int     `json:"total_structures_indexed"`
}

// SearchStats is a point-in-time summary of search latency.
type SearchStats struct {
	Count             int     `json:"count"`
	MinMillis         float64 `json:"min_ms"`
	MaxMillis         float64 `json:"max_ms"`
	MeanMillis        float64 `json:"mean_ms"`
	P50Millis         float64 `json:"p50_ms"`
	P90Millis         float64 `json:"p90_ms"`
	P95Millis         float64 `json:"p95_ms"`
	P99Millis         float64 `json:"p99_ms"`
	Under500msPercent float64 `json:"under_500ms_percent"`
}

// QueryPatterns counts how searches are shaped: which kind filters are
// requested and which k values.
type QueryPatterns struct {
	ByFilter map[string]int `json:"by_filter"`
	ByK      map[int]int    `json:"by_k"`
}

// Report is a full metrics snapshot.
type Report struct {
	Indexing      IndexingStats `json:"indexing"`
	Search        SearchStats   `json:"search"`
	QueryPatterns QueryPatterns `json:"query_patterns"`
}

// Tracker accumulates samples. Safe for concurrent use.
type Tracker struct {
	mu          sync.Mutex
	totalMillis float64
	minMillis   float64
	maxMillis   float64
	samples     []Sample
	indexing    IndexingStats
	byFilter    map[string]int
	byK         map[int]int
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{
		minMillis: math.Inf(1),
		byFilter:  make(map[string]int),
		byK:       make(map[int]int),
	}
}

// RecordSearch folds one search latency into the running statistics.
func (t *Tracker) RecordSearch(millis float64, k int, filter string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.samples = append(t.samples, Sample{Millis: millis, K: k, Filter: filter})
	t.totalMillis += millis
	if millis < t.minMillis {
		t.minMillis = millis
	}
	if millis > t.maxMillis {
		t.maxMillis = millis
	}

	if filter == "" {
		filter = "none"
	}
	t.byFilter[filter]++
	t.byK[k]++
}

// RecordIndexing stores the timings and corpus counts of a completed
// indexing run, replacing those of the previous run.
func (t *Tracker) RecordIndexing(stats IndexingStats) {
	t.mu.Lock()
	defer t.mu.Unlock()
	runs := t.indexing.Runs + 1
	t.indexing = stats
	t.indexing.Runs = runs
}

// Percentile computes the p-th percentile (0 < p <= 100) of recorded
// search latencies using the nearest-rank method on a sorted copy of the
// sample list. Returns 0 when no samples exist.
func (t *Tracker) Percentile(p float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return percentileLocked(t.samples, p)
}

// SearchStats summarizes recorded search latencies.
func (t *Tracker) SearchStats() SearchStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.searchStatsLocked()
}

// Report returns a full snapshot of indexing, search, and query-pattern
// statistics.
func (t *Tracker) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()

	patterns := QueryPatterns{
		ByFilter: make(map[string]int, len(t.byFilter)),
		ByK:      make(map[int]int, len(t.byK)),
	}
	for f, n := range t.byFilter {
		patterns.ByFilter[f] = n
	}
	for k, n := range t.byK {
		patterns.ByK[k] = n
	}

	return Report{
		Indexing:      t.indexing,
		Search:        t.searchStatsLocked(),
		QueryPatterns: patterns,
	}
}

func (t *Tracker) searchStatsLocked() SearchStats {
	count := len(t.samples)
	if count == 0 {
		return SearchStats{}
	}

	under := 0
	for _, s := range t.samples {
		if s.Millis < SLABudgetMillis {
			under++
		}
	}

	return SearchStats{
		Count:             count,
		MinMillis:         t.minMillis,
		MaxMillis:         t.maxMillis,
		MeanMillis:        t.totalMillis / float64(count),
		P50Millis:         percentileLocked(t.samples, 50),
		P90Millis:         percentileLocked(t.samples, 90),
		P95Millis:         percentileLocked(t.samples, 95),
		P99Millis:         percentileLocked(t.samples, 99),
		Under500msPercent: float64(under) / float64(count) * 100.0,
	}
}

// percentileLocked applies the nearest-rank method: the value at rank
// ceil(p/100 * n) in the ascending-sorted sample list.
func percentileLocked(samples []Sample, p float64) float64 {
	n := len(samples)
	if n == 0 || p <= 0 {
		return 0
	}
	if p > 100 {
		p = 100
	}

	sorted := make([]float64, n)
	for i, s := range samples {
		sorted[i] = s.Millis
	}
	sort.Float64s(sorted)

	rank := int(math.Ceil(p / 100.0 * float64(n)))
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}
