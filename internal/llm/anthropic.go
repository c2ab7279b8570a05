// ABOUTME: Anthropic Messages API adapter producing provider-neutral completions
// ABOUTME: Maps stop_reason to normalized codes and keeps thinking blocks as metadata
package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/time/rate"

	"github.com/harper/stitch/internal/models"
	"github.com/harper/stitch/internal/util"
)

const (
	// DefaultAnthropicModel is the default model for Anthropic completions
	DefaultAnthropicModel = "claude-sonnet-4-5"
	// ProviderAnthropic is the provider name used in config and logs
	ProviderAnthropic = "anthropic"
)

// AnthropicConfig holds configuration for the Anthropic client
type AnthropicConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxTokens  int64
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	RateLimit  float64
}

// DefaultAnthropicConfig returns the default Anthropic configuration
func DefaultAnthropicConfig(apiKey string) *AnthropicConfig {
	model := os.Getenv("STITCH_ANTHROPIC_MODEL")
	if model == "" {
		model = DefaultAnthropicModel
	}

	return &AnthropicConfig{
		APIKey:     apiKey,
		Model:      model,
		MaxTokens:  1024,
		Timeout:    60 * time.Second,
		MaxRetries: 3,
		RetryDelay: 2 * time.Second,
	}
}

// messagesAPI is the slice of the SDK's message service we call.
type messagesAPI interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AnthropicClient calls the Anthropic Messages API with retry logic
type AnthropicClient struct {
	messages   messagesAPI
	model      string
	maxTokens  int64
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	limiter    *rate.Limiter
}

// NewAnthropicClient creates a client with default configuration
func NewAnthropicClient(apiKey string) (*AnthropicClient, error) {
	return NewAnthropicClientWithConfig(DefaultAnthropicConfig(apiKey))
}

// NewAnthropicClientWithConfig creates a client with custom configuration.
// The SDK's own retries are disabled so util.Retry governs attempts.
func NewAnthropicClientWithConfig(config *AnthropicConfig) (*AnthropicClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(0),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	client := anthropic.NewClient(opts...)

	return &AnthropicClient{
		messages:   &client.Messages,
		model:      config.Model,
		maxTokens:  config.MaxTokens,
		timeout:    config.Timeout,
		maxRetries: config.MaxRetries,
		retryDelay: config.RetryDelay,
		limiter:    util.NewLimiter(config.RateLimit, 1),
	}, nil
}

// Name returns the provider name
func (c *AnthropicClient) Name() string {
	return ProviderAnthropic
}

// Model returns the configured model
func (c *AnthropicClient) Model() string {
	return c.model
}

// Complete sends the conversation and returns the concatenated text blocks
func (c *AnthropicClient) Complete(ctx context.Context, messages []models.Message) (*models.Completion, error) {
	params := toAnthropicParams(messages)
	params.Model = anthropic.Model(c.model)
	params.MaxTokens = c.maxTokens

	var resp *anthropic.Message
	err := util.Retry(ctx, c.maxRetries, c.retryDelay, func(ctx context.Context) error {
		if err := util.WaitLimiter(ctx, c.limiter); err != nil {
			return &util.Permanent{Err: err}
		}
		attemptCtx, cancel := withTimeout(ctx, c.timeout)
		defer cancel()

		r, err := c.messages.New(attemptCtx, params)
		if err != nil {
			if isPermanentAnthropicError(err) {
				return &util.Permanent{Err: err}
			}
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic messages: %w", err)
	}

	var text, thinking strings.Builder
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "thinking":
			thinking.WriteString(block.Thinking)
		}
	}

	completion := &models.Completion{
		Content:   text.String(),
		Finish:    normalizeAnthropicStop(resp.StopReason),
		RawFinish: string(resp.StopReason),
		Model:     string(resp.Model),
		Usage: models.Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
		},
		Metadata: map[string]string{},
	}
	if resp.ID != "" {
		completion.Metadata["id"] = resp.ID
	}
	if thinking.Len() > 0 {
		completion.Metadata["thinking"] = thinking.String()
	}
	return completion, nil
}

// Send is Complete shaped as a continuation send function
func (c *AnthropicClient) Send(ctx context.Context, messages []models.Message) (models.Response, error) {
	return c.Complete(ctx, messages)
}

// toAnthropicParams splits system messages into the system prompt and maps
// the rest onto user/assistant turns.
func toAnthropicParams(messages []models.Message) anthropic.MessageNewParams {
	var params anthropic.MessageNewParams
	for _, m := range messages {
		switch m.Role {
		case models.RoleSystem:
			params.System = append(params.System, anthropic.TextBlockParam{Text: m.Content})
		case models.RoleAssistant:
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return params
}

func normalizeAnthropicStop(reason anthropic.StopReason) models.FinishReason {
	switch reason {
	case anthropic.StopReasonMaxTokens:
		return models.FinishLength
	case anthropic.StopReasonEndTurn, anthropic.StopReasonStopSequence:
		return models.FinishStop
	case anthropic.StopReasonToolUse:
		return models.FinishToolCalls
	}
	switch string(reason) {
	case "refusal":
		return models.FinishRefusal
	case "model_context_window_exceeded":
		return models.FinishContextWindow
	}
	return models.FinishUnknown
}

func isPermanentAnthropicError(err error) bool {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return isPermanentStatus(apiErr.StatusCode)
	}
	return false
}
