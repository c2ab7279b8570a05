// ABOUTME: Sentence terminator set shared by the mid-sentence heuristic and break-point search
// ABOUTME: Covers ASCII and CJK full-width terminators
package scan

// DefaultTerminators lists the runes that end a sentence.
var DefaultTerminators = []rune{'.', '!', '?', '。', '！', '？', '、'}

// IsTerminator reports whether r is in set.
func IsTerminator(r rune, set []rune) bool {
	for _, t := range set {
		if r == t {
			return true
		}
	}
	return false
}
