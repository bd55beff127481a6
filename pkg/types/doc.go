// Package types provides shared type definitions for codescout.
//
// This package defines the domain types used across the search engine:
// documents, search hits, and validation errors.
//
// # Core Types
//
// Document represents an indexable unit of code — a whole file or a named
// sub-structure (function or class) extracted from one:
//
//	doc := types.Document{
//	    Kind:      types.DocFunction,
//	    Name:      "ParseFile",
//	    Path:      "internal/parser/parser.go",
//	    Line:      27,
//	    Docstring: "ParseFile parses a Go source file.",
//	}
//
// A document is immutable once embedded. Inside a vector index it is
// identified only by its current ordinal position, which is reassigned on
// every rebuild — it is not a stable key.
//
// SearchHit pairs a document with its raw distance from the query vector
// and a display-only relevance score:
//
//	hit.Relevance == 1 / (1 + hit.Distance)
//
// The relevance score is a bounded monotonic transform for presentation.
// Internal ranking always uses raw distance.
package types
