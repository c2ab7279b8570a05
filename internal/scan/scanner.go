// ABOUTME: Escape-aware structural scanner shared by truncation detection and repair
// ABOUTME: Tracks string mode and backslash escapes so quoted brackets are never counted
package scan

// Scanner walks text one rune at a time and reports which runes are
// structural, i.e. outside any quoted string and not escaped.
//
// Both single and double quotes open string mode. Inside a string only the
// same unescaped quote closes it.
type Scanner struct {
	inString bool
	quote    rune
	escaped  bool
}

// Step feeds one rune and reports whether it is structural.
func (s *Scanner) Step(r rune) bool {
	if s.escaped {
		s.escaped = false
		return false
	}
	if r == '\\' {
		s.escaped = true
		return false
	}

	if s.inString {
		if r == s.quote {
			s.inString = false
			s.quote = 0
		}
		return false
	}

	if r == '"' || r == '\'' {
		s.inString = true
		s.quote = r
		return false
	}
	return true
}

// InString reports whether the scanner ended inside an unterminated string.
func (s *Scanner) InString() bool {
	return s.inString
}

// Quote returns the rune that opened the current string, or 0.
func (s *Scanner) Quote() rune {
	return s.quote
}

// Walk calls fn for every structural rune in text with its byte offset.
// It returns the scanner so callers can inspect the final string state.
func Walk(text string, fn func(i int, r rune)) *Scanner {
	s := &Scanner{}
	for i, r := range text {
		if s.Step(r) {
			fn(i, r)
		}
	}
	return s
}

// Balance holds the count of unclosed openers per bracket kind.
// Surplus closers drive a counter negative; only positive values mean unclosed.
type Balance struct {
	Braces   int
	Brackets int
	Parens   int
}

// Unclosed reports whether any bracket kind has a positive count.
func (b Balance) Unclosed() bool {
	return b.Braces > 0 || b.Brackets > 0 || b.Parens > 0
}

// CountBrackets tallies {}, [] and () outside quoted strings.
func CountBrackets(text string) Balance {
	var b Balance
	Walk(text, func(_ int, r rune) {
		switch r {
		case '{':
			b.Braces++
		case '}':
			b.Braces--
		case '[':
			b.Brackets++
		case ']':
			b.Brackets--
		case '(':
			b.Parens++
		case ')':
			b.Parens--
		}
	})
	return b
}
