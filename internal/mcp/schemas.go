package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// indexCodebaseTool returns the tool definition for index_codebase
func indexCodebaseTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_codebase",
		Description: "Index a source tree to make it semantically searchable",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the codebase root",
				},
				"force": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, rebuild the index even when one already exists",
					"default":     false,
				},
			},
			Required: []string{"path"},
		},
	}
}

// searchCodeTool returns the tool definition for search_code
func searchCodeTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_code",
		Description: "Search the indexed codebase with a natural language query",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Natural language or keyword query",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
				"filter": map[string]interface{}{
					"type":        "string",
					"description": "Restrict results to one document kind",
					"enum":        []string{"file", "function", "class"},
				},
				"format_context": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, include an LLM-ready context blob rendered from the hits",
					"default":     false,
				},
				"max_context_chars": map[string]interface{}{
					"type":        "integer",
					"description": "Character budget for the rendered context blob",
				},
			},
			Required: []string{"query"},
		},
	}
}

// getMetricsTool returns the tool definition for get_metrics
func getMetricsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_metrics",
		Description: "Report indexing statistics and search latency percentiles",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
