package types

import "errors"

// DocumentKind identifies the structural kind of an indexed document.
type DocumentKind string

const (
	DocFile     DocumentKind = "file"
	DocFunction DocumentKind = "function"
	DocClass    DocumentKind = "class"
)

// Document represents a semantically indexable code unit: a whole source
// file or a named structure extracted from one. Documents are immutable
// once embedded and carry no stable identifier — inside an index they are
// addressed by ordinal position only.
type Document struct {
	Kind      DocumentKind
	Name      string
	Path      string
	Line      int    // 1-based start line; 0 for whole-file documents
	Docstring string // Leading doc comment, if any
	Code      string // Source excerpt used for embedding and display

	// Extra holds forward-compatible metadata that has no core field.
	// Nil for almost all documents.
	Extra map[string]string
}

// ValidateKind checks that the document kind is one of the known variants.
func (d *Document) ValidateKind() error {
	switch d.Kind {
	case DocFile, DocFunction, DocClass:
		return nil
	default:
		return ErrInvalidKind
	}
}

// Validate performs full validation of the document.
func (d *Document) Validate() error {
	if err := d.ValidateKind(); err != nil {
		return err
	}
	if d.Path == "" {
		return ErrMissingPath
	}
	if d.Kind != DocFile && d.Name == "" {
		return errors.New("named structure requires a name")
	}
	if d.Line < 0 {
		return errors.New("line number cannot be negative")
	}
	return nil
}

// DisplayName returns the name used when rendering the document, falling
// back to the path for whole-file documents.
func (d *Document) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Path
}
