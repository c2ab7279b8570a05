// ABOUTME: Tests for the Anthropic adapter using a fake message service and httptest
// ABOUTME: Covers text concatenation, thinking metadata, stop reasons and retries
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/stitch/internal/models"
)

type fakeMessages struct {
	got   anthropic.MessageNewParams
	calls int
	errs  []error
	resp  *anthropic.Message
}

func (f *fakeMessages) New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error) {
	f.calls++
	f.got = body
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	return f.resp, nil
}

func TestNewAnthropicClient_RequiresKey(t *testing.T) {
	_, err := NewAnthropicClient("")
	assert.Error(t, err)
}

func TestAnthropicComplete_HTTP(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-5",
			"content": [
				{"type": "thinking", "thinking": "plan", "signature": "sig"},
				{"type": "text", "text": "Hello "},
				{"type": "text", "text": "there"}
			],
			"stop_reason": "max_tokens",
			"stop_sequence": null,
			"usage": {"input_tokens": 5, "output_tokens": 7}
		}`))
	}))
	defer srv.Close()

	client, err := NewAnthropicClientWithConfig(&AnthropicConfig{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		Model:      "claude-sonnet-4-5",
		MaxTokens:  128,
		Timeout:    5 * time.Second,
		RetryDelay: time.Millisecond,
	})
	require.NoError(t, err)

	completion, err := client.Complete(context.Background(), []models.Message{
		models.SystemMessage("be kind"),
		models.UserMessage("greet me"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello there", completion.Text())
	assert.Equal(t, models.FinishLength, completion.StandardFinishReason())
	assert.Equal(t, "max_tokens", completion.FinishReason())
	assert.Equal(t, "plan", completion.Metadata["thinking"])
	assert.Equal(t, "msg_1", completion.Metadata["id"])
	assert.Equal(t, int64(7), completion.Usage.OutputTokens)

	assert.Equal(t, "claude-sonnet-4-5", body["model"])
	assert.EqualValues(t, 128, body["max_tokens"])
	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, msgs, 1)
	assert.NotNil(t, body["system"])
}

func TestAnthropicComplete_RetriesThenSucceeds(t *testing.T) {
	fake := &fakeMessages{
		errs: []error{errors.New("connection reset")},
		resp: &anthropic.Message{
			Content:    []anthropic.ContentBlockUnion{{Type: "text", Text: "ok."}},
			StopReason: anthropic.StopReasonEndTurn,
		},
	}
	client := &AnthropicClient{messages: fake, model: "m", maxTokens: 10, maxRetries: 2, retryDelay: time.Millisecond}

	completion, err := client.Complete(context.Background(), []models.Message{models.UserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, "ok.", completion.Text())
	assert.Equal(t, models.FinishStop, completion.StandardFinishReason())
	assert.Equal(t, 2, fake.calls)
}

func TestAnthropicComplete_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer srv.Close()

	client, err := NewAnthropicClientWithConfig(&AnthropicConfig{
		APIKey:     "bad-key",
		BaseURL:    srv.URL,
		Model:      "claude-sonnet-4-5",
		MaxTokens:  16,
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
	})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), []models.Message{models.UserMessage("hi")})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	var apiErr *anthropic.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestToAnthropicParams(t *testing.T) {
	params := toAnthropicParams([]models.Message{
		models.SystemMessage("sys one"),
		models.UserMessage("question"),
		models.AssistantMessage("partial answer"),
		models.UserMessage("continue"),
		models.SystemMessage("sys two"),
	})

	require.Len(t, params.System, 2)
	assert.Equal(t, "sys one", params.System[0].Text)
	assert.Equal(t, "sys two", params.System[1].Text)

	require.Len(t, params.Messages, 3)
	assert.Equal(t, anthropic.MessageParamRoleUser, params.Messages[0].Role)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, params.Messages[1].Role)
	assert.Equal(t, anthropic.MessageParamRoleUser, params.Messages[2].Role)
}

func TestNormalizeAnthropicStop(t *testing.T) {
	tests := []struct {
		in   anthropic.StopReason
		want models.FinishReason
	}{
		{anthropic.StopReasonEndTurn, models.FinishStop},
		{anthropic.StopReasonStopSequence, models.FinishStop},
		{anthropic.StopReasonMaxTokens, models.FinishLength},
		{anthropic.StopReasonToolUse, models.FinishToolCalls},
		{"refusal", models.FinishRefusal},
		{"model_context_window_exceeded", models.FinishContextWindow},
		{"pause_turn", models.FinishUnknown},
		{"", models.FinishUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeAnthropicStop(tt.in), "stop %q", tt.in)
	}
}
