// Package mcp exposes the search engine over the Model Context Protocol.
//
// The server speaks MCP over stdio and registers three tools:
// index_codebase builds or rebuilds the index from a source tree,
// search_code answers ranked semantic queries (optionally rendering an
// LLM-ready context blob), and get_metrics reports indexing and search
// latency statistics including the under-500ms SLA percentage.
package mcp
