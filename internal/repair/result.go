// ABOUTME: Recovery result types returned by the content repair operations
// ABOUTME: Status distinguishes clean repairs from lossy trim-to-valid repairs
package repair

// Status describes the outcome of a repair attempt.
type Status int

const (
	NoRecoveryNeeded Status = iota
	Recovered
	PartiallyRecovered
	Failed
)

func (s Status) String() string {
	switch s {
	case NoRecoveryNeeded:
		return "no_recovery_needed"
	case Recovered:
		return "recovered"
	case PartiallyRecovered:
		return "partially_recovered"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText renders the status by name in JSON and YAML output.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result is the outcome of a repair. Content always holds usable text: the
// repaired text on success, the input unchanged otherwise.
type Result struct {
	Status      Status `json:"status"`
	Content     string `json:"content"`
	Description string `json:"description"`
}

// Changed reports whether the repair produced new content worth adopting.
func (r Result) Changed() bool {
	return r.Status == Recovered || r.Status == PartiallyRecovered
}

// Lossy reports whether trailing content was discarded to reach valid output.
func (r Result) Lossy() bool {
	return r.Status == PartiallyRecovered
}
