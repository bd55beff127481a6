// Package scanner walks a source tree and produces indexable documents.
//
// Scan re-walks the tree on every call: there is no incremental diffing,
// by design. A file yields one whole-file document plus zero or more named
// sub-structures (functions, classes) when a structural extractor is
// registered for its language. Structural parsing is pluggable per
// extension; an unparsable file is logged and skipped, never fatal to the
// scan.
//
// Files are filtered through a static ignore set (VCS metadata, build
// output, dependency trees) plus glob patterns loaded once from an ignore
// file at construction.
package scanner
