// ABOUTME: Truncation reasons and the immutable classification result
// ABOUTME: Reasons are ordered by detection priority, None means complete
package truncation

// Reason says why a response is considered truncated.
type Reason int

const (
	None Reason = iota
	TokenLimit
	ContentFiltered
	Recitation
	Refusal
	ContextWindowExceeded
	UnbalancedStructure
	IncompleteCodeBlock
	MidSentence
)

var reasonNames = map[Reason]string{
	None:                  "none",
	TokenLimit:            "token_limit",
	ContentFiltered:       "content_filtered",
	Recitation:            "recitation",
	Refusal:               "refusal",
	ContextWindowExceeded: "context_window_exceeded",
	UnbalancedStructure:   "unbalanced_structure",
	IncompleteCodeBlock:   "incomplete_code_block",
	MidSentence:           "mid_sentence",
}

func (r Reason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return "unknown"
}

// MarshalText renders the reason by name.
func (r Reason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Info is the result of one classification. It is a plain value and is
// compared with ==.
type Info struct {
	IsTruncated bool   `json:"is_truncated"`
	Reason      Reason `json:"reason"`
	Details     string `json:"details,omitempty"`
}

// Complete is the Info for a response that is not truncated.
var Complete = Info{Reason: None}

func truncated(reason Reason, details string) Info {
	return Info{IsTruncated: true, Reason: reason, Details: details}
}
