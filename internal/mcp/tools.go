package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/codescout/codescout/internal/engine"
	"github.com/codescout/codescout/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeIndexingInProgress = -32001 // Another indexing operation is already running
	ErrorCodeEmptyQuery         = -32002 // Query parameter is empty
)

// handleIndexCodebase handles the index_codebase tool invocation
func (s *Server) handleIndexCodebase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param": "path",
		})
	}
	if err := validatePath(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	force := getBoolDefault(args, "force", false)

	report, err := s.engine.IndexCodebase(ctx, path, force)
	if err != nil {
		if errors.Is(err, engine.ErrIndexingInProgress) {
			return nil, newMCPError(ErrorCodeIndexingInProgress, "indexing already in progress", nil)
		}
		s.logger.Error("indexing failed", zap.String("path", path), zap.Error(err))
		return nil, newMCPError(ErrorCodeInternalError, "indexing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"indexed":                  true,
		"skipped":                  report.Skipped,
		"files_scanned":            report.FilesScanned,
		"functions_indexed":        report.Functions,
		"classes_indexed":          report.Classes,
		"total_structures_indexed": report.Structures,
		"documents_indexed":        report.Documents,
		"failed_files":             report.FailedFiles,
		"duration_ms":              report.Duration.Milliseconds(),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchCode handles the search_code tool invocation
func (s *Server) handleSearchCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param": "query",
		})
	}

	limit := getIntDefault(args, "limit", 10)
	filter := types.DocumentKind(getStringDefault(args, "filter", ""))
	if filter != "" {
		probe := types.Document{Kind: filter}
		if err := probe.ValidateKind(); err != nil {
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid filter", map[string]interface{}{
				"param": "filter",
				"value": string(filter),
			})
		}
	}

	result, err := s.engine.Search(ctx, query, limit, filter)
	if err != nil {
		s.logger.Error("search failed", zap.String("query", query), zap.Error(err))
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	hits := make([]map[string]interface{}, len(result.Hits))
	for i, hit := range result.Hits {
		hits[i] = map[string]interface{}{
			"kind":            string(hit.Document.Kind),
			"name":            hit.Document.Name,
			"path":            hit.Document.Path,
			"line":            hit.Document.Line,
			"docstring":       hit.Document.Docstring,
			"distance":        hit.Distance,
			"relevance_score": hit.Relevance,
		}
	}

	response := map[string]interface{}{
		"indexed":       result.Indexed,
		"total_results": len(hits),
		"results":       hits,
		"duration_ms":   result.Duration.Milliseconds(),
	}

	if getBoolDefault(args, "format_context", false) {
		maxChars := getIntDefault(args, "max_context_chars", 0)
		response["context"] = s.engine.FormatContext(result.Hits, maxChars)
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetMetrics handles the get_metrics tool invocation
func (s *Server) handleGetMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report := s.engine.Metrics()
	stats := s.engine.IndexStats()

	encoded, err := json.MarshalIndent(map[string]interface{}{
		"index": map[string]interface{}{
			"count":     stats.Count,
			"dimension": stats.Dimension,
			"ready":     s.engine.Indexed(),
		},
		"indexing":       report.Indexing,
		"search":         report.Search,
		"query_patterns": report.QueryPatterns,
	}, "", "  ")
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "encoding metrics failed", nil)
	}
	return mcp.NewToolResultText(string(encoded)), nil
}

// MCPError is a JSON-RPC style error with a code and optional data.
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{Code: code, Message: message, Data: data}
}

// validatePath ensures the indexing target exists and is a directory.
func validatePath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

func formatJSON(data map[string]interface{}) string {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(encoded)
}

func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return defaultValue
}

func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return defaultValue
}

func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return defaultValue
}
