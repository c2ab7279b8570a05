// ABOUTME: Provider-neutral response shape consumed by truncation detection and continuation
// ABOUTME: Completion is the concrete response built by the provider adapters
package models

import "strings"

// Response is the minimal view of a model response: its text and the raw
// stop signal reported by the provider ("" when absent).
type Response interface {
	Text() string
	FinishReason() string
}

// NormalizedFinish is implemented by responses that also carry a
// provider-independent finish code.
type NormalizedFinish interface {
	StandardFinishReason() FinishReason
}

// TextReplacer is implemented by responses that can produce a copy of
// themselves with different text and identical metadata.
type TextReplacer interface {
	WithText(text string) Response
}

// FinishReason is the normalized stop signal.
type FinishReason string

const (
	FinishUnknown       FinishReason = ""
	FinishStop          FinishReason = "stop"
	FinishLength        FinishReason = "length"
	FinishContentFilter FinishReason = "content_filter"
	FinishRecitation    FinishReason = "recitation"
	FinishRefusal       FinishReason = "refusal"
	FinishContextWindow FinishReason = "context_window_exceeded"
	FinishToolCalls     FinishReason = "tool_calls"
)

// Usage holds token counts reported with a response.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// Completion is a complete model response as returned by a provider adapter.
type Completion struct {
	Content   string            `json:"content"`
	Finish    FinishReason      `json:"finish_reason,omitempty"`
	RawFinish string            `json:"raw_finish_reason,omitempty"`
	Model     string            `json:"model,omitempty"`
	Usage     Usage             `json:"usage"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Text returns the response text.
func (c *Completion) Text() string {
	return c.Content
}

// FinishReason returns the raw provider stop string, falling back to the
// normalized code when the adapter did not record one.
func (c *Completion) FinishReason() string {
	if c.RawFinish != "" {
		return c.RawFinish
	}
	return string(c.Finish)
}

// StandardFinishReason returns the normalized finish code.
func (c *Completion) StandardFinishReason() FinishReason {
	return c.Finish
}

// WithText returns a copy with the given text. Metadata is copied so the
// result does not alias the receiver.
func (c *Completion) WithText(text string) Response {
	out := *c
	out.Content = text
	if c.Metadata != nil {
		out.Metadata = make(map[string]string, len(c.Metadata))
		for k, v := range c.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}

// TextOf extracts text from r, trimming nothing. A nil response has no text.
func TextOf(r Response) string {
	if r == nil {
		return ""
	}
	return r.Text()
}

// HasText reports whether r carries any non-whitespace text.
func HasText(r Response) bool {
	return strings.TrimSpace(TextOf(r)) != ""
}
