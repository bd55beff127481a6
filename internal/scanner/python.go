package scanner

import (
	"strings"

	"github.com/codescout/codescout/pkg/types"
)

// PythonExtractor extracts named structures from Python source with a
// line scan: `def` headers become function documents, `class` headers
// become class documents. It is deliberately shallow — no expression
// parsing — but captures names, docstrings, and body excerpts, which is
// what the embedding needs.
type PythonExtractor struct {
	// maxBodyLines bounds the excerpt captured per structure.
	maxBodyLines int
}

// NewPythonExtractor creates a Python structural extractor.
func NewPythonExtractor() *PythonExtractor {
	return &PythonExtractor{maxBodyLines: 80}
}

// Extract scans src line by line for def/class headers at any
// indentation. Nested definitions produce their own documents.
func (p *PythonExtractor) Extract(relPath string, src []byte) ([]types.Document, error) {
	lines := strings.Split(string(src), "\n")
	var docs []types.Document

	for i, raw := range lines {
		indent := len(raw) - len(strings.TrimLeft(raw, " \t"))
		line := strings.TrimSpace(raw)

		var kind types.DocumentKind
		var rest string
		switch {
		case strings.HasPrefix(line, "def ") || strings.HasPrefix(line, "async def "):
			kind = types.DocFunction
			rest = strings.TrimPrefix(strings.TrimPrefix(line, "async "), "def ")
		case strings.HasPrefix(line, "class "):
			kind = types.DocClass
			rest = strings.TrimPrefix(line, "class ")
		default:
			continue
		}

		name := structureName(rest)
		if name == "" {
			continue
		}

		end := p.blockEnd(lines, i, indent)
		docs = append(docs, types.Document{
			Kind:      kind,
			Name:      name,
			Path:      relPath,
			Line:      i + 1,
			Docstring: docstring(lines, i+1, end),
			Code:      strings.Join(lines[i:end], "\n"),
		})
	}

	return docs, nil
}

// structureName pulls the identifier off a def/class header remainder.
func structureName(rest string) string {
	for i, r := range rest {
		if r == '(' || r == ':' || r == ' ' {
			return rest[:i]
		}
	}
	return strings.TrimSpace(rest)
}

// blockEnd finds the exclusive end line of the block starting at header
// line start with the given indentation: the first subsequent non-blank
// line indented at or below the header.
func (p *PythonExtractor) blockEnd(lines []string, start, indent int) int {
	end := start + 1
	for ; end < len(lines); end++ {
		line := lines[end]
		if strings.TrimSpace(line) == "" {
			continue
		}
		lineIndent := len(line) - len(strings.TrimLeft(line, " \t"))
		if lineIndent <= indent {
			break
		}
	}
	if end-start > p.maxBodyLines {
		end = start + p.maxBodyLines
	}
	return end
}

// docstring returns the leading triple-quoted string of a block, if the
// first non-blank body line starts one.
func docstring(lines []string, bodyStart, bodyEnd int) string {
	i := bodyStart
	for i < bodyEnd && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i >= bodyEnd {
		return ""
	}

	line := strings.TrimSpace(lines[i])
	var quote string
	switch {
	case strings.HasPrefix(line, `"""`):
		quote = `"""`
	case strings.HasPrefix(line, "'''"):
		quote = "'''"
	default:
		return ""
	}

	body := strings.TrimPrefix(line, quote)
	if idx := strings.Index(body, quote); idx >= 0 {
		return strings.TrimSpace(body[:idx])
	}

	parts := []string{body}
	for j := i + 1; j < bodyEnd; j++ {
		text := lines[j]
		if idx := strings.Index(text, quote); idx >= 0 {
			parts = append(parts, strings.TrimSpace(text[:idx]))
			break
		}
		parts = append(parts, strings.TrimSpace(text))
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
