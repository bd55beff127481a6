package engine

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codescout/codescout/pkg/types"
)

func makeHit(name, code string, distance float64) types.SearchHit {
	return types.NewSearchHit(types.Document{
		Kind:      types.DocFunction,
		Name:      name,
		Path:      "pkg/" + strings.ToLower(name) + ".go",
		Line:      10,
		Docstring: name + " does a thing.",
		Code:      code,
	}, distance)
}

func TestFormatContextWithinBudget(t *testing.T) {
	eng := newTestEngine(t, Config{})
	hits := []types.SearchHit{
		makeHit("Alpha", "func Alpha() {}", 0.1),
		makeHit("Beta", "func Beta() {}", 0.2),
	}

	out := eng.FormatContext(hits, 4000)
	assert.LessOrEqual(t, len(out), 4000)
	assert.Contains(t, out, "[1] function Alpha")
	assert.Contains(t, out, "[2] function Beta")
	assert.Contains(t, out, "pkg/alpha.go:10")
	assert.Contains(t, out, "relevance=0.909")
	assert.NotContains(t, out, truncationMarker)
}

func TestFormatContextStopsAtBudget(t *testing.T) {
	eng := newTestEngine(t, Config{})
	hits := []types.SearchHit{
		makeHit("Alpha", "func Alpha() {}", 0.1),
		makeHit("Beta", strings.Repeat("x", 500), 0.2),
		makeHit("Gamma", "func Gamma() {}", 0.3),
	}

	first := len(eng.FormatContext(hits[:1], 4000))
	out := eng.FormatContext(hits, first+50)
	assert.Contains(t, out, "Alpha")
	assert.NotContains(t, out, "Beta", "a hit that does not fit whole is dropped")
	assert.NotContains(t, out, "Gamma", "formatting stops at the first hit that does not fit")
	assert.LessOrEqual(t, len(out), first+50)
}

func TestFormatContextOversizedFirstHit(t *testing.T) {
	eng := newTestEngine(t, Config{})
	hits := []types.SearchHit{makeHit("Huge", strings.Repeat("y", 2000), 0.1)}

	out := eng.FormatContext(hits, 200)
	require.NotEmpty(t, out, "an oversized first hit is truncated, not dropped")
	assert.Len(t, out, 200)
	assert.True(t, strings.HasSuffix(out, truncationMarker))
}

func TestFormatContextTruncationKeepsValidUTF8(t *testing.T) {
	eng := newTestEngine(t, Config{})
	hits := []types.SearchHit{makeHit("Wide", strings.Repeat("日本語テキスト", 200), 0.1)}

	for budget := 150; budget < 170; budget++ {
		out := eng.FormatContext(hits, budget)
		require.NotEmpty(t, out)
		assert.True(t, utf8.ValidString(out), "budget %d must not split a rune", budget)
		assert.True(t, strings.HasSuffix(out, truncationMarker))
		assert.LessOrEqual(t, len(out), budget)
	}
}

func TestFormatContextEmptyHits(t *testing.T) {
	eng := newTestEngine(t, Config{})
	assert.Empty(t, eng.FormatContext(nil, 1000))
}

func TestFormatContextDefaultBudget(t *testing.T) {
	eng := newTestEngine(t, Config{MaxContextChars: 120})
	hits := []types.SearchHit{makeHit("Huge", strings.Repeat("z", 2000), 0.1)}

	out := eng.FormatContext(hits, 0)
	assert.Len(t, out, 120, "a zero budget falls back to the configured default")
}
