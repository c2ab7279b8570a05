// ABOUTME: Code fence closure, clean break-point search, and fragment combining
// ABOUTME: Pure text helpers used when stitching continuation fragments together
package repair

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/harper/stitch/internal/scan"
)

// RepairFences closes a dangling markdown code fence.
func RepairFences(text string) Result {
	if !scan.InsideFence(text) {
		return Result{
			Status:      NoRecoveryNeeded,
			Content:     text,
			Description: "all code fences are closed",
		}
	}

	var b strings.Builder
	b.WriteString(text)
	if !strings.HasSuffix(text, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString(scan.FenceMarker)

	return Result{
		Status:      Recovered,
		Content:     b.String(),
		Description: "closed unterminated code block",
	}
}

// FindCleanBreak returns the byte index just past the last sentence
// terminator, else past the last paragraph break, else past the last newline.
func FindCleanBreak(text string) (int, bool) {
	return FindCleanBreakWith(text, scan.DefaultTerminators)
}

// FindCleanBreakWith is FindCleanBreak with a custom terminator set.
func FindCleanBreakWith(text string, terminators []rune) (int, bool) {
	for i := len(text); i > 0; {
		r, size := utf8.DecodeLastRuneInString(text[:i])
		if scan.IsTerminator(r, terminators) {
			return i, true
		}
		i -= size
	}
	if i := strings.LastIndex(text, "\n\n"); i >= 0 {
		return i + 2, true
	}
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		return i + 1, true
	}
	return 0, false
}

// Combine joins fragments in order, skipping empty ones. A single space is
// inserted between neighbours unless either side already has whitespace at
// the seam or the accumulated text ends in punctuation.
func Combine(fragments []string) string {
	var b strings.Builder
	for _, frag := range fragments {
		if frag == "" {
			continue
		}
		if b.Len() > 0 && needsSpace(b.String(), frag) {
			b.WriteByte(' ')
		}
		b.WriteString(frag)
	}
	return b.String()
}

func needsSpace(acc, next string) bool {
	last, _ := utf8.DecodeLastRuneInString(acc)
	first, _ := utf8.DecodeRuneInString(next)
	switch {
	case unicode.IsSpace(last), unicode.IsSpace(first):
		return false
	case unicode.IsPunct(last):
		return false
	}
	return true
}
