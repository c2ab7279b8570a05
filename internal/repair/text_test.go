// ABOUTME: Tests for fence repair, clean break search, and fragment combining
// ABOUTME: Pins the punctuation-adjacency rule used when joining fragments
package repair

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairFences(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		status Status
		want   string
	}{
		{"no fences", "plain text", NoRecoveryNeeded, "plain text"},
		{"closed fence", "```go\nx := 1\n```", NoRecoveryNeeded, "```go\nx := 1\n```"},
		{"open fence", "```go\nx := 1", Recovered, "```go\nx := 1\n```"},
		{"open fence with newline", "```\nx\n", Recovered, "```\nx\n```"},
		{"second fence open", "```\na\n```\n```py\nb", Recovered, "```\na\n```\n```py\nb\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := RepairFences(tt.input)
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, tt.want, res.Content)
		})
	}
}

func TestFindCleanBreak(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
		found bool
	}{
		{"sentence", "Hello world. More text", 12, true},
		{"last terminator wins", "One! Two? Three", 9, true},
		{"paragraph", "para one\n\npara two", 10, true},
		{"single newline", "line1\nline2", 6, true},
		{"cjk terminator", "你好。世界", 9, true},
		{"nothing", "no breaks here", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := FindCleanBreak(tt.input)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindCleanBreakWith_CustomSet(t *testing.T) {
	got, found := FindCleanBreakWith("a; b; c", []rune{';'})
	require.True(t, found)
	assert.Equal(t, 4, got)
}

func TestCombine(t *testing.T) {
	tests := []struct {
		name      string
		fragments []string
		want      string
	}{
		{"nil", nil, ""},
		{"single", []string{"only"}, "only"},
		{"words", []string{"Hello", "world"}, "Hello world"},
		{"trailing space", []string{"Hello ", "world"}, "Hello world"},
		{"leading space", []string{"Hello", " world"}, "Hello world"},
		{"newline seam", []string{"line\n", "next"}, "line\nnext"},
		{"skips empty", []string{"Hello", "", "world"}, "Hello world"},
		{"punctuation adjacency", []string{"Part 1...", "...Part 2."}, "Part 1......Part 2."},
		{"comma", []string{"a,", "b"}, "a,b"},
		{"json seam", []string{`{"a":`, `1}`}, `{"a":1}`},
		{"three fragments", []string{"The quick", "brown fox", "jumps."}, "The quick brown fox jumps."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Combine(tt.fragments))
		})
	}
}
