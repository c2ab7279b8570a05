// ABOUTME: Tests for the three-tier truncation classifier
// ABOUTME: Covers finish reason mapping, structural checks, and the mid-sentence heuristic
package truncation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/stitch/internal/models"
)

type rawResponse struct {
	text   string
	finish string
}

func (r rawResponse) Text() string         { return r.text }
func (r rawResponse) FinishReason() string { return r.finish }

var longSentence = strings.Repeat("The model keeps writing words ", 5)

func TestClassify_FinishReasons(t *testing.T) {
	tests := []struct {
		finish string
		want   Reason
	}{
		{"length", TokenLimit},
		{"max_tokens", TokenLimit},
		{"MAX_TOKENS", TokenLimit},
		{"model_context_window_exceeded", ContextWindowExceeded},
		{"content_filter", ContentFiltered},
		{"SAFETY", ContentFiltered},
		{"RECITATION", Recitation},
		{"refusal", Refusal},
	}

	for _, tt := range tests {
		t.Run(tt.finish, func(t *testing.T) {
			info := Classify(rawResponse{text: "Complete sentence.", finish: tt.finish})
			assert.True(t, info.IsTruncated)
			assert.Equal(t, tt.want, info.Reason)
			assert.Contains(t, info.Details, tt.finish)
		})
	}
}

func TestClassify_LengthWinsRegardlessOfText(t *testing.T) {
	texts := []string{"", "Done.", `{"a": 1}`, longSentence + "end."}
	for _, text := range texts {
		info := Classify(rawResponse{text: text, finish: "length"})
		assert.Equal(t, TokenLimit, info.Reason, "text %q", text)
	}
}

func TestClassify_NormalizedFinishCheckedFirst(t *testing.T) {
	resp := &models.Completion{Content: "Done.", Finish: models.FinishLength, RawFinish: "weird_provider_code"}
	assert.Equal(t, TokenLimit, Classify(resp).Reason)

	resp = &models.Completion{Content: "Done.", Finish: models.FinishContextWindow}
	assert.Equal(t, ContextWindowExceeded, Classify(resp).Reason)
}

func TestClassify_NoTextIsComplete(t *testing.T) {
	assert.Equal(t, Complete, Classify(rawResponse{finish: "stop"}))
	assert.Equal(t, Complete, Classify(rawResponse{text: "  \n", finish: ""}))
	assert.Equal(t, Complete, Classify(nil))
}

func TestClassify_FallsThroughToText(t *testing.T) {
	info := Classify(rawResponse{text: "func() { if (x) {", finish: "stop"})
	assert.Equal(t, UnbalancedStructure, info.Reason)
}

func TestClassifyText_UnbalancedBraces(t *testing.T) {
	info := ClassifyText("func() { if (x) {")

	require.True(t, info.IsTruncated)
	assert.Equal(t, UnbalancedStructure, info.Reason)
	assert.Contains(t, info.Details, "2 '{'")
	assert.NotContains(t, info.Details, "'('")
}

func TestClassifyText_BracketsInStringsIgnored(t *testing.T) {
	info := ClassifyText(`"a \" b { c"`)
	assert.Equal(t, Complete, info)
}

func TestClassifyText_IncompleteCodeBlock(t *testing.T) {
	info := ClassifyText("Here is the code:\n```go\nfmt.Println(1)\n")

	assert.Equal(t, IncompleteCodeBlock, info.Reason)
	assert.True(t, info.IsTruncated)
}

func TestClassifyText_Heuristic(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Reason
	}{
		{"mid sentence", longSentence + "and then", MidSentence},
		{"period", longSentence + "done.", None},
		{"trailing whitespace", longSentence + "done.  \n\n", None},
		{"question", longSentence + "right?", None},
		{"cjk full stop", longSentence + "完了。", None},
		{"cjk comma", longSentence + "そして、", None},
		{"list intro", longSentence + "as follows:", None},
		{"bullet", longSentence + "\n-", None},
		{"heading", longSentence + "\n#", None},
		{"ends with code block", longSentence + "see:\n```go\nx := 1\n```", None},
		{"short reply", "ok so", None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyText(tt.text).Reason)
		})
	}
}

func TestClassifyText_ShortTextNeverMidSentence(t *testing.T) {
	for n := 0; n < DefaultMinHeuristicLength; n += 7 {
		text := strings.Repeat("x", n)
		assert.NotEqual(t, MidSentence, ClassifyText(text).Reason, "length %d", n)
	}
}

func TestClassifier_DisabledTiers(t *testing.T) {
	structuralOnly, err := New(Options{EnableStructural: true})
	require.NoError(t, err)
	assert.Equal(t, Complete, structuralOnly.ClassifyText(longSentence+"and then"))
	assert.Equal(t, UnbalancedStructure, structuralOnly.ClassifyText("{").Reason)

	opts := DefaultOptions()
	opts.EnableStructural = false
	heuristicOnly, err := New(opts)
	require.NoError(t, err)
	assert.Equal(t, Complete, heuristicOnly.ClassifyText("{"))
}

func TestClassifier_CustomMinimum(t *testing.T) {
	opts := DefaultOptions()
	opts.MinHeuristicLength = 0
	c, err := New(opts)
	require.NoError(t, err)

	assert.Equal(t, MidSentence, c.ClassifyText("ok so").Reason)
}

func TestOptions_Validate(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())

	opts := DefaultOptions()
	opts.MinHeuristicLength = -1
	assert.ErrorIs(t, opts.Validate(), ErrInvalidOptions)

	opts = DefaultOptions()
	opts.Terminators = nil
	_, err := New(opts)
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestReason_String(t *testing.T) {
	assert.Equal(t, "none", None.String())
	assert.Equal(t, "token_limit", TokenLimit.String())
	assert.Equal(t, "mid_sentence", MidSentence.String())
	assert.Equal(t, "unknown", Reason(42).String())
}
