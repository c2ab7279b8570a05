// ABOUTME: Line-based code fence scanner for markdown triple-backtick blocks
// ABOUTME: Each fence marker line toggles the inside-fence state
package scan

import (
	"strings"
	"unicode"
)

// FenceMarker is the markdown code fence delimiter.
const FenceMarker = "```"

// IsFenceLine reports whether line is a fence marker alone on its line,
// optionally followed by a language tag such as ```go or ```c++.
func IsFenceLine(line string) bool {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, FenceMarker) {
		return false
	}
	tag := line[len(FenceMarker):]
	for _, r := range tag {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		switch r {
		case '_', '-', '+', '.', '#':
			continue
		}
		return false
	}
	return true
}

// InsideFence reports whether text ends inside an unclosed code fence.
func InsideFence(text string) bool {
	inside := false
	for _, line := range strings.Split(text, "\n") {
		if IsFenceLine(line) {
			inside = !inside
		}
	}
	return inside
}

// EndsWithFence reports whether the last non-blank line of text is a fence marker.
func EndsWithFence(text string) bool {
	trimmed := strings.TrimRightFunc(text, unicode.IsSpace)
	if trimmed == "" {
		return false
	}
	last := trimmed
	if i := strings.LastIndexByte(trimmed, '\n'); i >= 0 {
		last = trimmed[i+1:]
	}
	return IsFenceLine(last)
}
