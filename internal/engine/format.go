package engine

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/codescout/codescout/pkg/types"
)

// truncationMarker ends a hit that had to be cut to fit the budget.
const truncationMarker = "\n[truncated]"

// FormatContext renders hits into one bounded text blob for an LLM
// prompt. Whole hits are appended while the running length stays within
// maxChars; the formatter stops before exceeding the budget rather than
// cutting a hit mid-way. The one exception: when even the first hit is
// larger than the budget, a truncated first hit is emitted instead of
// nothing, so callers always get some context from a non-empty result.
func (e *Engine) FormatContext(hits []types.SearchHit, maxChars int) string {
	if maxChars <= 0 {
		maxChars = e.cfg.MaxContextChars
	}
	if len(hits) == 0 {
		return ""
	}

	var b strings.Builder
	for i, hit := range hits {
		block := renderHit(i+1, &hit)

		if b.Len()+len(block) > maxChars {
			if i == 0 {
				b.WriteString(truncateBlock(block, maxChars))
			}
			break
		}
		b.WriteString(block)
	}
	return b.String()
}

// renderHit formats a single hit, trailing newline included so blocks
// concatenate cleanly.
func renderHit(rank int, hit *types.SearchHit) string {
	var b strings.Builder

	doc := &hit.Document
	fmt.Fprintf(&b, "--- [%d] %s %s", rank, doc.Kind, doc.DisplayName())
	if doc.Line > 0 {
		fmt.Fprintf(&b, " (%s:%d)", doc.Path, doc.Line)
	} else if doc.Name != doc.Path {
		fmt.Fprintf(&b, " (%s)", doc.Path)
	}
	fmt.Fprintf(&b, " relevance=%.3f ---\n", hit.Relevance)

	if doc.Docstring != "" {
		b.WriteString(doc.Docstring)
		b.WriteString("\n")
	}
	if doc.Code != "" {
		b.WriteString(doc.Code)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

// truncateBlock cuts a block to fit budget bytes, marker included. The
// cut never splits a multi-byte rune.
func truncateBlock(block string, budget int) string {
	if budget <= len(truncationMarker) {
		return trimPartialRune(block[:budget])
	}
	return trimPartialRune(block[:budget-len(truncationMarker)]) + truncationMarker
}

// trimPartialRune drops the trailing bytes of a rune that a byte-index
// cut left incomplete.
func trimPartialRune(s string) string {
	for len(s) > 0 {
		r, size := utf8.DecodeLastRuneInString(s)
		if r == utf8.RuneError && size == 1 {
			s = s[:len(s)-1]
			continue
		}
		break
	}
	return s
}
