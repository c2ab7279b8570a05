// ABOUTME: Tests for break command
// ABOUTME: Verifies clean break output, offsets and custom terminators

package commands

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestBreakCmd(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"sentence", "One. Two! Three and", nil, "One. Two!"},
		{"paragraph", "alpha\n\nbeta gamma", nil, "alpha\n\n"},
		{"newline", "alpha\nbeta", nil, "alpha\n"},
		{"custom terminators", "a; b. c", []string{"--terminators", ";"}, "a;"},
		{"offset", "One. Two", []string{"--offset"}, "4"},
		{"cjk", "こんにちは。世界", nil, "こんにちは。"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"break"}, tt.args...)
			stdout, _, err := runRoot(t, tt.stdin, args...)
			if err != nil {
				t.Fatalf("break error = %v", err)
			}
			if strings.TrimSuffix(stdout, "\n") != tt.want {
				t.Errorf("stdout = %q, want %q", stdout, tt.want)
			}
		})
	}
}

func TestBreakCmd_NoBreak(t *testing.T) {
	_, _, err := runRoot(t, "no break here", "break")
	if err == nil {
		t.Fatal("expected error when no clean break exists")
	}
}

func TestBreakCmd_JSON(t *testing.T) {
	stdout, _, err := runRoot(t, "no break here", "--format", "json", "break")
	if err != nil {
		t.Fatalf("break error = %v", err)
	}

	var got cleanBreak
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout)
	}
	if got.Found || got.Index != 0 || got.Head != "" {
		t.Errorf("got %+v, want not found at 0", got)
	}
}
