// ABOUTME: Tests for Completion response behavior
// ABOUTME: Verifies finish reason fallback and metadata-preserving text replacement
package models

import "testing"

func TestCompletion_FinishReason(t *testing.T) {
	tests := []struct {
		name string
		c    Completion
		want string
	}{
		{"raw preferred", Completion{Finish: FinishLength, RawFinish: "max_tokens"}, "max_tokens"},
		{"normalized fallback", Completion{Finish: FinishContentFilter}, "content_filter"},
		{"absent", Completion{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.FinishReason(); got != tt.want {
				t.Errorf("FinishReason() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompletion_WithText(t *testing.T) {
	orig := &Completion{
		Content:   "partial",
		Finish:    FinishLength,
		RawFinish: "length",
		Model:     "gpt-4o-mini",
		Usage:     Usage{InputTokens: 10, OutputTokens: 20},
		Metadata:  map[string]string{"reasoning": "thoughts"},
	}

	replaced, ok := orig.WithText("full answer").(*Completion)
	if !ok {
		t.Fatal("WithText() did not return *Completion")
	}

	if replaced.Content != "full answer" {
		t.Errorf("Content = %q, want %q", replaced.Content, "full answer")
	}
	if replaced.Model != orig.Model || replaced.Usage != orig.Usage || replaced.RawFinish != orig.RawFinish {
		t.Errorf("metadata not preserved: got %+v", replaced)
	}
	if replaced.Metadata["reasoning"] != "thoughts" {
		t.Errorf("Metadata[reasoning] = %q, want %q", replaced.Metadata["reasoning"], "thoughts")
	}

	replaced.Metadata["reasoning"] = "changed"
	if orig.Metadata["reasoning"] != "thoughts" {
		t.Error("WithText() copy aliases the original metadata map")
	}
	if orig.Content != "partial" {
		t.Error("WithText() mutated the original")
	}
}

func TestHasText(t *testing.T) {
	if HasText(nil) {
		t.Error("HasText(nil) = true, want false")
	}
	if HasText(&Completion{Content: "  \n"}) {
		t.Error("HasText(whitespace) = true, want false")
	}
	if !HasText(&Completion{Content: "hi"}) {
		t.Error("HasText(hi) = false, want true")
	}
}

func TestMessageConstructors(t *testing.T) {
	if m := UserMessage("u"); m.Role != RoleUser || m.Content != "u" {
		t.Errorf("UserMessage() = %+v", m)
	}
	if m := AssistantMessage("a"); m.Role != RoleAssistant {
		t.Errorf("AssistantMessage() role = %q", m.Role)
	}
	if m := SystemMessage("s"); m.Role != RoleSystem {
		t.Errorf("SystemMessage() role = %q", m.Role)
	}
}
