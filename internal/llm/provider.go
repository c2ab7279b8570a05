// ABOUTME: Provider abstraction over the OpenAI and Anthropic adapters
// ABOUTME: NewProvider picks an adapter from application configuration
package llm

import (
	"context"
	"fmt"

	"github.com/harper/stitch/internal/config"
	"github.com/harper/stitch/internal/models"
)

// Provider is a chat model that returns complete, provider-neutral responses.
type Provider interface {
	Name() string
	Model() string
	Complete(ctx context.Context, messages []models.Message) (*models.Completion, error)
	Send(ctx context.Context, messages []models.Message) (models.Response, error)
}

var (
	_ Provider = (*OpenAIClient)(nil)
	_ Provider = (*AnthropicClient)(nil)
)

// NewProvider builds the adapter named by cfg.Provider.
func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.Provider {
	case ProviderOpenAI, "":
		return NewOpenAIClientWithConfig(&ClientConfig{
			APIKey:      cfg.OpenAIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			ChatModel:   cfg.OpenAIModel,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
			MaxRetries:  cfg.MaxRetries,
			RetryDelay:  cfg.RetryDelay,
			RateLimit:   cfg.RequestsPerSecond,
		})
	case ProviderAnthropic:
		return NewAnthropicClientWithConfig(&AnthropicConfig{
			APIKey:     cfg.AnthropicKey,
			BaseURL:    cfg.AnthropicBaseURL,
			Model:      cfg.AnthropicModel,
			MaxTokens:  int64(cfg.MaxTokens),
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
			RateLimit:  cfg.RequestsPerSecond,
		})
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
