// ABOUTME: OpenAI chat completion adapter producing provider-neutral completions
// ABOUTME: Maps finish_reason to normalized codes and retries transient transport errors
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/harper/stitch/internal/models"
	"github.com/harper/stitch/internal/util"
)

const (
	// DefaultChatModel is the default model for chat completions
	DefaultChatModel = "gpt-4o-mini"
	// ProviderOpenAI is the provider name used in config and logs
	ProviderOpenAI = "openai"
)

// ClientConfig holds configuration for the OpenAI client
type ClientConfig struct {
	APIKey      string
	BaseURL     string
	ChatModel   string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
	MaxRetries  int
	RetryDelay  time.Duration
	RateLimit   float64 // requests per second, 0 disables
}

// DefaultConfig returns the default client configuration
func DefaultConfig(apiKey string) *ClientConfig {
	chatModel := os.Getenv("STITCH_OPENAI_MODEL")
	if chatModel == "" {
		chatModel = DefaultChatModel
	}

	return &ClientConfig{
		APIKey:      apiKey,
		ChatModel:   chatModel,
		MaxTokens:   1024,
		Temperature: 0.3,
		Timeout:     60 * time.Second,
		MaxRetries:  3,
		RetryDelay:  time.Second * 2,
	}
}

// OpenAIClient wraps the OpenAI API client with retry logic
type OpenAIClient struct {
	client      *openai.Client
	chatModel   string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	maxRetries  int
	retryDelay  time.Duration
	limiter     *rate.Limiter
}

// NewOpenAIClient creates a new OpenAI client with the given API key using default configuration
func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	return NewOpenAIClientWithConfig(DefaultConfig(apiKey))
}

// NewOpenAIClientWithConfig creates a new OpenAI client with custom configuration
func NewOpenAIClientWithConfig(config *ClientConfig) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(clientConfig),
		chatModel:   config.ChatModel,
		maxTokens:   config.MaxTokens,
		temperature: config.Temperature,
		timeout:     config.Timeout,
		maxRetries:  config.MaxRetries,
		retryDelay:  config.RetryDelay,
		limiter:     util.NewLimiter(config.RateLimit, 1),
	}, nil
}

// Name returns the provider name
func (c *OpenAIClient) Name() string {
	return ProviderOpenAI
}

// Model returns the configured chat model
func (c *OpenAIClient) Model() string {
	return c.chatModel
}

// Complete sends the conversation and returns the first choice as a Completion
func (c *OpenAIClient) Complete(ctx context.Context, messages []models.Message) (*models.Completion, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.chatModel,
		Messages:    toOpenAIMessages(messages),
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	var resp openai.ChatCompletionResponse
	err := util.Retry(ctx, c.maxRetries, c.retryDelay, func(ctx context.Context) error {
		if err := util.WaitLimiter(ctx, c.limiter); err != nil {
			return &util.Permanent{Err: err}
		}
		attemptCtx, cancel := withTimeout(ctx, c.timeout)
		defer cancel()

		r, err := c.client.CreateChatCompletion(attemptCtx, req)
		if err != nil {
			if isPermanentOpenAIError(err) {
				return &util.Permanent{Err: err}
			}
			return err
		}
		if len(r.Choices) == 0 {
			return errors.New("no completion choices returned")
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}

	choice := resp.Choices[0]
	completion := &models.Completion{
		Content:   choice.Message.Content,
		Finish:    normalizeOpenAIFinish(choice.FinishReason),
		RawFinish: string(choice.FinishReason),
		Model:     resp.Model,
		Usage: models.Usage{
			InputTokens:  int64(resp.Usage.PromptTokens),
			OutputTokens: int64(resp.Usage.CompletionTokens),
		},
	}
	if resp.ID != "" {
		completion.Metadata = map[string]string{"id": resp.ID}
		if resp.SystemFingerprint != "" {
			completion.Metadata["system_fingerprint"] = resp.SystemFingerprint
		}
	}
	return completion, nil
}

// Send is Complete shaped as a continuation send function
func (c *OpenAIClient) Send(ctx context.Context, messages []models.Message) (models.Response, error) {
	return c.Complete(ctx, messages)
}

func toOpenAIMessages(messages []models.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case models.RoleSystem:
			role = openai.ChatMessageRoleSystem
		case models.RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return out
}

func normalizeOpenAIFinish(reason openai.FinishReason) models.FinishReason {
	switch reason {
	case openai.FinishReasonLength:
		return models.FinishLength
	case openai.FinishReasonContentFilter:
		return models.FinishContentFilter
	case openai.FinishReasonStop:
		return models.FinishStop
	case openai.FinishReasonToolCalls, openai.FinishReasonFunctionCall:
		return models.FinishToolCalls
	default:
		return models.FinishUnknown
	}
}

// isPermanentOpenAIError reports client errors that retrying cannot fix.
// Rate limits (429) stay retryable.
func isPermanentOpenAIError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return isPermanentStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return isPermanentStatus(reqErr.HTTPStatusCode)
	}
	return false
}

func isPermanentStatus(code int) bool {
	return code >= 400 && code < 500 && code != http.StatusTooManyRequests && code != http.StatusRequestTimeout
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
