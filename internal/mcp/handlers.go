// ABOUTME: MCP tool handler implementations for the stitch server
// ABOUTME: Each handler validates arguments, runs one operation and returns a JSON text result
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/harper/stitch/internal/continuation"
	"github.com/harper/stitch/internal/llm"
	"github.com/harper/stitch/internal/log"
	"github.com/harper/stitch/internal/models"
	"github.com/harper/stitch/internal/repair"
	"github.com/harper/stitch/internal/truncation"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	classifier *truncation.Classifier
	engine     *continuation.Engine
	provider   llm.Provider
	logger     *slog.Logger
}

// NewHandlers builds the tool handlers. A nil logger discards output.
func NewHandlers(classifier *truncation.Classifier, engine *continuation.Engine, provider llm.Provider, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = log.Discard()
	}
	return &Handlers{
		classifier: classifier,
		engine:     engine,
		provider:   provider,
		logger:     logger,
	}
}

// CleanBreak is the find_clean_break response
type CleanBreak struct {
	Found bool   `json:"found"`
	Index int    `json:"index"`
	Head  string `json:"head"`
	Tail  string `json:"tail"`
}

// Completion is the complete_with_continuation response
type Completion struct {
	RunID             string          `json:"run_id"`
	Provider          string          `json:"provider"`
	Model             string          `json:"model"`
	Text              string          `json:"text"`
	ContinuationCount int             `json:"continuation_count"`
	ReachedMax        bool            `json:"reached_max"`
	Recovery          repair.Status   `json:"recovery"`
	Truncation        truncation.Info `json:"truncation"`
}

// ClassifyTruncation handles the classify_truncation tool
func (h *Handlers) ClassifyTruncation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text argument is required and must be a string"), nil
	}
	finish := request.GetString("finish_reason", "")

	info := h.classifier.Classify(&models.Completion{Content: text, RawFinish: finish})
	return jsonResult(info)
}

// RepairJSON handles the repair_json tool
func (h *Handlers) RepairJSON(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text argument is required and must be a string"), nil
	}
	return jsonResult(repair.RepairJSON(text))
}

// RepairCodeFences handles the repair_code_fences tool
func (h *Handlers) RepairCodeFences(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text argument is required and must be a string"), nil
	}
	return jsonResult(repair.RepairFences(text))
}

// FindCleanBreak handles the find_clean_break tool
func (h *Handlers) FindCleanBreak(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text argument is required and must be a string"), nil
	}

	var idx int
	var found bool
	if terms := request.GetString("terminators", ""); terms != "" {
		idx, found = repair.FindCleanBreakWith(text, []rune(terms))
	} else {
		idx, found = repair.FindCleanBreak(text)
	}

	return jsonResult(CleanBreak{
		Found: found,
		Index: idx,
		Head:  text[:idx],
		Tail:  text[idx:],
	})
}

// CombineFragments handles the combine_fragments tool
func (h *Handlers) CombineFragments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fragments, ok := extractStringArray(request.GetArguments(), "fragments")
	if !ok {
		return mcp.NewToolResultError("fragments argument is required and must be an array of strings"), nil
	}
	return jsonResult(map[string]string{"text": repair.Combine(fragments)})
}

// CompleteWithContinuation handles the complete_with_continuation tool
func (h *Handlers) CompleteWithContinuation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := request.RequireString("prompt")
	if err != nil {
		return mcp.NewToolResultError("prompt argument is required and must be a string"), nil
	}
	if h.provider == nil {
		return mcp.NewToolResultError("no model provider configured; set OPENAI_API_KEY or ANTHROPIC_API_KEY"), nil
	}

	engine := h.engine
	if n := request.GetInt("max_continuations", -1); n >= 0 {
		cfg := engine.Config()
		cfg.MaxContinuations = n
		engine, err = continuation.NewEngine(cfg,
			continuation.WithClassifier(h.classifier),
			continuation.WithLogger(h.logger))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid max_continuations: %v", err)), nil
		}
	}

	var messages []models.Message
	if system := request.GetString("system", ""); system != "" {
		messages = append(messages, models.SystemMessage(system))
	}
	messages = append(messages, models.UserMessage(prompt))

	logger := log.WithProvider(h.logger, h.provider.Name())
	initial, err := h.provider.Send(ctx, messages)
	if err != nil {
		logger.Error("initial request failed", slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("request failed: %v", err)), nil
	}

	result, err := engine.Run(ctx, initial, messages, h.provider.Send)
	if err != nil {
		var maxErr *continuation.MaxContinuationsError
		if errors.As(err, &maxErr) {
			return mcp.NewToolResultError(fmt.Sprintf("%v; partial text: %s", err, maxErr.Text)), nil
		}
		logger.Error("continuation failed", slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("continuation failed: %v", err)), nil
	}

	return jsonResult(Completion{
		RunID:             result.RunID,
		Provider:          h.provider.Name(),
		Model:             h.provider.Model(),
		Text:              result.FinalText,
		ContinuationCount: result.ContinuationCount,
		ReachedMax:        result.ReachedMax,
		Recovery:          result.Recovery.Status,
		Truncation:        result.Truncation,
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// extractStringArray safely extracts a string array from tool arguments
func extractStringArray(args map[string]any, key string) ([]string, bool) {
	val, ok := args[key]
	if !ok {
		return nil, false
	}

	switch v := val.(type) {
	case []string:
		return v, true
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}
