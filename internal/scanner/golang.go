package scanner

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"

	"github.com/codescout/codescout/pkg/types"
)

// GoExtractor extracts named structures from Go source via the AST.
// Functions and methods become function documents; struct and interface
// type declarations become class documents.
type GoExtractor struct{}

// NewGoExtractor creates a Go structural extractor.
func NewGoExtractor() *GoExtractor {
	return &GoExtractor{}
}

// Extract parses src and returns one document per top-level function,
// method, struct, and interface. A syntax error fails the whole file; the
// scanner treats that as a soft, per-file failure.
func (g *GoExtractor) Extract(relPath string, src []byte) ([]types.Document, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, relPath, src, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(src), "\n")
	var docs []types.Document

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			docs = append(docs, types.Document{
				Kind:      types.DocFunction,
				Name:      funcName(d),
				Path:      relPath,
				Line:      fset.Position(d.Pos()).Line,
				Docstring: docText(d.Doc),
				Code:      sliceLines(lines, fset.Position(d.Pos()).Line, fset.Position(d.End()).Line),
			})

		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok || !isClassLike(ts.Type) {
					continue
				}
				doc := ts.Doc
				if doc == nil {
					doc = d.Doc
				}
				docs = append(docs, types.Document{
					Kind:      types.DocClass,
					Name:      ts.Name.Name,
					Path:      relPath,
					Line:      fset.Position(ts.Pos()).Line,
					Docstring: docText(doc),
					Code:      sliceLines(lines, fset.Position(d.Pos()).Line, fset.Position(d.End()).Line),
				})
			}
		}
	}

	return docs, nil
}

// funcName qualifies methods with their receiver type, e.g. "Index.Add".
func funcName(d *ast.FuncDecl) string {
	if d.Recv == nil || len(d.Recv.List) == 0 {
		return d.Name.Name
	}
	return receiverType(d.Recv.List[0].Type) + "." + d.Name.Name
}

func receiverType(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverType(t.X)
	case *ast.Ident:
		return t.Name
	case *ast.IndexExpr:
		return receiverType(t.X)
	case *ast.IndexListExpr:
		return receiverType(t.X)
	default:
		return ""
	}
}

// isClassLike keeps struct and interface declarations; aliases and basic
// named types are not class documents.
func isClassLike(expr ast.Expr) bool {
	switch expr.(type) {
	case *ast.StructType, *ast.InterfaceType:
		return true
	default:
		return false
	}
}

func docText(cg *ast.CommentGroup) string {
	if cg == nil {
		return ""
	}
	return strings.TrimSpace(cg.Text())
}

// sliceLines returns the 1-based inclusive line range joined back
// together, clamped to the file.
func sliceLines(lines []string, start, end int) string {
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return ""
	}
	return strings.Join(lines[start-1:end], "\n")
}
