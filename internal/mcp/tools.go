// ABOUTME: MCP tool definitions and registration for the stitch server
// ABOUTME: Exposes truncation classification, repair helpers and continuation as tools
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/stitch/internal/continuation"
	"github.com/harper/stitch/internal/llm"
	"github.com/harper/stitch/internal/truncation"
)

// RegisterTools registers all MCP tools with the server. provider may be nil,
// in which case complete_with_continuation reports an error when called.
func RegisterTools(server *mcpserver.MCPServer, classifier *truncation.Classifier, engine *continuation.Engine, provider llm.Provider, logger *slog.Logger) *Handlers {
	handlers := NewHandlers(classifier, engine, provider, logger)

	// 1. classify_truncation - Decide whether a response was cut off
	server.AddTool(mcp.Tool{
		Name:        "classify_truncation",
		Description: "Classify whether an LLM response was truncated, using the finish reason, bracket and code fence balance, and sentence endings.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Response text to classify",
				},
				"finish_reason": map[string]interface{}{
					"type":        "string",
					"description": "Provider finish or stop reason, if known (e.g. length, max_tokens, stop)",
				},
			},
			Required: []string{"text"},
		},
	}, handlers.ClassifyTruncation)

	// 2. repair_json - Close or trim a truncated JSON document
	server.AddTool(mcp.Tool{
		Name:        "repair_json",
		Description: "Repair truncated JSON by closing open strings and brackets, or trimming back to the longest valid prefix.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Possibly truncated JSON text",
				},
			},
			Required: []string{"text"},
		},
	}, handlers.RepairJSON)

	// 3. repair_code_fences - Close an unterminated markdown code block
	server.AddTool(mcp.Tool{
		Name:        "repair_code_fences",
		Description: "Close an unterminated markdown code block by appending a closing fence.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Markdown text that may end inside a code block",
				},
			},
			Required: []string{"text"},
		},
	}, handlers.RepairCodeFences)

	// 4. find_clean_break - Locate the last safe cut point
	server.AddTool(mcp.Tool{
		Name:        "find_clean_break",
		Description: "Find the last clean break in text: after a sentence terminator, else a paragraph break, else a newline.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Text to search",
				},
				"terminators": map[string]interface{}{
					"type":        "string",
					"description": "Optional set of terminator characters (default: .!?。！？、)",
				},
			},
			Required: []string{"text"},
		},
	}, handlers.FindCleanBreak)

	// 5. combine_fragments - Join continuation fragments
	server.AddTool(mcp.Tool{
		Name:        "combine_fragments",
		Description: "Join response fragments in order, inserting a space only where the seam needs one.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"fragments": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Fragments in the order they were produced",
				},
			},
			Required: []string{"fragments"},
		},
	}, handlers.CombineFragments)

	// 6. complete_with_continuation - Prompt the model and continue until complete
	server.AddTool(mcp.Tool{
		Name:        "complete_with_continuation",
		Description: "Send a prompt to the configured model and keep requesting continuations until the answer is complete, then combine and repair the fragments.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"prompt": map[string]interface{}{
					"type":        "string",
					"description": "User prompt",
				},
				"system": map[string]interface{}{
					"type":        "string",
					"description": "Optional system prompt",
				},
				"max_continuations": map[string]interface{}{
					"type":        "number",
					"description": "Override the maximum number of continuation requests",
				},
			},
			Required: []string{"prompt"},
		},
	}, handlers.CompleteWithContinuation)

	return handlers
}
