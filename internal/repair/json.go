// ABOUTME: Best-effort JSON closure repair for truncated model output
// ABOUTME: Closes open strings and brackets, falling back to trimming to the last valid element
package repair

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/harper/stitch/internal/scan"
)

// maxTrimAttempts bounds how many cut points trim-to-valid validates.
const maxTrimAttempts = 256

// LooksLikeJSON reports whether text, ignoring surrounding whitespace, is an
// object or array that is still open at the end or closes exactly there.
// Prose that starts with a quoted phrase, a bracketed citation or a complete
// value followed by explanation does not.
func LooksLikeJSON(text string) bool {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "{") && !strings.HasPrefix(t, "[") {
		return false
	}
	points := scanCutPoints(t)
	return points[len(points)-1].offset == len(t)
}

// RepairJSON tries to turn truncated JSON into a valid document.
//
// Valid input is returned as NoRecoveryNeeded. Otherwise open strings and
// brackets are closed in LIFO order (Recovered). If that still does not
// parse, the text is cut back to the rightmost '}', ']' or '"' whose prefix
// can be closed into valid JSON (PartiallyRecovered). Failed leaves the input
// untouched.
func RepairJSON(text string) Result {
	if json.Valid([]byte(text)) {
		return Result{
			Status:      NoRecoveryNeeded,
			Content:     text,
			Description: "content is already valid JSON",
		}
	}

	points := scanCutPoints(text)
	if len(points) > 0 {
		end := points[len(points)-1]
		if end.offset == len(text) {
			closed := text + end.suffix()
			if json.Valid([]byte(closed)) {
				return Result{
					Status:      Recovered,
					Content:     closed,
					Description: fmt.Sprintf("closed unterminated structure with %q", end.suffix()),
				}
			}
			points = points[:len(points)-1]
		}
	}

	buf := make([]byte, 0, len(text)+16)
	attempts := 0
	for i := len(points) - 1; i >= 0 && attempts < maxTrimAttempts; i-- {
		p := points[i]
		attempts++
		buf = append(buf[:0], text[:p.offset]...)
		buf = append(buf, p.suffix()...)
		if json.Valid(buf) {
			return Result{
				Status:      PartiallyRecovered,
				Content:     string(buf),
				Description: fmt.Sprintf("trimmed %d trailing bytes to last valid element", len(text)-p.offset),
			}
		}
	}

	return Result{
		Status:      Failed,
		Content:     text,
		Description: "could not repair JSON",
	}
}

// closer is one open bracket. Nodes are shared between cut points so a
// snapshot of the whole stack is a single pointer.
type closer struct {
	b      byte
	parent *closer
}

// cutPoint is the scanner state just after text[:offset].
type cutPoint struct {
	offset int
	top    *closer
	quote  rune // open string quote, or 0
}

func (p cutPoint) suffix() string {
	var b strings.Builder
	if p.quote != 0 {
		b.WriteRune(p.quote)
	}
	for c := p.top; c != nil; c = c.parent {
		b.WriteByte(c.b)
	}
	return b.String()
}

// scanCutPoints walks text once and records the state after every '}', ']'
// or '"'. The final entry is always the state at the end of the text.
//
// Scanning stops where the root value closes: any longer prefix has trailing
// content and cannot be valid. Text that cannot start a JSON value yields only
// the end state.
func scanCutPoints(text string) []cutPoint {
	var (
		s      scan.Scanner
		top    *closer
		points []cutPoint
	)
	state := func(offset int) cutPoint {
		p := cutPoint{offset: offset, top: top}
		if s.InString() {
			p.quote = s.Quote()
		}
		return p
	}

	first := strings.TrimLeftFunc(text, unicode.IsSpace)
	if first == "" || !strings.ContainsRune(`{["-0123456789tfn`, rune(first[0])) {
		return []cutPoint{state(len(text))}
	}
	container := first[0] == '{' || first[0] == '[' || first[0] == '"'

	for i, r := range text {
		if s.Step(r) {
			switch r {
			case '{':
				top = &closer{b: '}', parent: top}
			case '[':
				top = &closer{b: ']', parent: top}
			case '}', ']':
				if top != nil && top.b == byte(r) {
					top = top.parent
				}
			}
		}
		if r != '}' && r != ']' && r != '"' {
			continue
		}
		end := i + 1
		points = append(points, state(end))
		if container && top == nil && !s.InString() {
			if end < len(text) {
				return points
			}
			break
		}
	}

	if n := len(points); n == 0 || points[n-1].offset != len(text) {
		points = append(points, state(len(text)))
	}
	return points
}
