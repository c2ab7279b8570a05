// ABOUTME: Three-tier truncation classifier: finish reason, structure, then sentence heuristics
// ABOUTME: Never fails; absence of any signal classifies the response as complete
package truncation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/harper/stitch/internal/models"
	"github.com/harper/stitch/internal/scan"
)

// DefaultMinHeuristicLength is the rune count below which the mid-sentence
// heuristic assumes a reply is intentionally terse.
const DefaultMinHeuristicLength = 100

// ErrInvalidOptions is returned by Options.Validate.
var ErrInvalidOptions = errors.New("invalid classifier options")

// listMarkers are trailing runes that introduce a list or heading rather
// than ending a sentence.
var listMarkers = []rune{':', '-', '*', '#'}

// Options tunes the text-based tiers of the classifier.
type Options struct {
	EnableStructural   bool
	EnableHeuristic    bool
	MinHeuristicLength int
	Terminators        []rune
}

// DefaultOptions enables every tier with the standard terminator set.
func DefaultOptions() Options {
	return Options{
		EnableStructural:   true,
		EnableHeuristic:    true,
		MinHeuristicLength: DefaultMinHeuristicLength,
		Terminators:        scan.DefaultTerminators,
	}
}

// Validate rejects negative lengths and an empty terminator set when the
// heuristic tier is enabled.
func (o Options) Validate() error {
	if o.MinHeuristicLength < 0 {
		return fmt.Errorf("%w: min heuristic length must be non-negative, got %d", ErrInvalidOptions, o.MinHeuristicLength)
	}
	if o.EnableHeuristic && len(o.Terminators) == 0 {
		return fmt.Errorf("%w: heuristic tier needs at least one terminator", ErrInvalidOptions)
	}
	return nil
}

// Classifier decides whether a response was cut off.
type Classifier struct {
	opts Options
}

// New creates a Classifier after validating opts.
func New(opts Options) (*Classifier, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{opts: opts}, nil
}

var defaultClassifier = &Classifier{opts: DefaultOptions()}

// Classify runs the default classifier on a response.
func Classify(resp models.Response) Info {
	return defaultClassifier.Classify(resp)
}

// ClassifyText runs the default classifier on bare text.
func ClassifyText(text string) Info {
	return defaultClassifier.ClassifyText(text)
}

// Classify checks the provider finish reason first, then falls back to the
// text tiers. A response without text is complete unless its finish reason
// says otherwise.
func (c *Classifier) Classify(resp models.Response) Info {
	if resp == nil {
		return Complete
	}
	if info, ok := fromFinishReason(resp); ok {
		return info
	}
	if !models.HasText(resp) {
		return Complete
	}
	return c.ClassifyText(resp.Text())
}

// ClassifyText runs the structural and heuristic tiers on text.
func (c *Classifier) ClassifyText(text string) Info {
	if c.opts.EnableStructural {
		if info, ok := checkStructure(text); ok {
			return info
		}
	}
	if c.opts.EnableHeuristic {
		if info, ok := c.checkSentence(text); ok {
			return info
		}
	}
	return Complete
}

func fromFinishReason(resp models.Response) (Info, bool) {
	if nf, ok := resp.(models.NormalizedFinish); ok {
		switch std := nf.StandardFinishReason(); std {
		case models.FinishLength:
			return truncated(TokenLimit, "finish reason: "+string(std)), true
		case models.FinishContextWindow:
			return truncated(ContextWindowExceeded, "finish reason: "+string(std)), true
		case models.FinishContentFilter:
			return truncated(ContentFiltered, "finish reason: "+string(std)), true
		case models.FinishRecitation:
			return truncated(Recitation, "finish reason: "+string(std)), true
		case models.FinishRefusal:
			return truncated(Refusal, "finish reason: "+string(std)), true
		}
	}

	raw := strings.TrimSpace(resp.FinishReason())
	switch strings.ToLower(raw) {
	case "length", "max_tokens":
		return truncated(TokenLimit, "finish reason: "+raw), true
	case "model_context_window_exceeded":
		return truncated(ContextWindowExceeded, "finish reason: "+raw), true
	case "content_filter", "safety":
		return truncated(ContentFiltered, "finish reason: "+raw), true
	case "recitation":
		return truncated(Recitation, "finish reason: "+raw), true
	case "refusal":
		return truncated(Refusal, "finish reason: "+raw), true
	}
	return Info{}, false
}

func checkStructure(text string) (Info, bool) {
	if b := scan.CountBrackets(text); b.Unclosed() {
		return truncated(UnbalancedStructure, describeBalance(b)), true
	}
	if scan.InsideFence(text) {
		return truncated(IncompleteCodeBlock, "code block opened with ``` is never closed"), true
	}
	return Info{}, false
}

func describeBalance(b scan.Balance) string {
	var parts []string
	if b.Braces > 0 {
		parts = append(parts, fmt.Sprintf("%d '{'", b.Braces))
	}
	if b.Brackets > 0 {
		parts = append(parts, fmt.Sprintf("%d '['", b.Brackets))
	}
	if b.Parens > 0 {
		parts = append(parts, fmt.Sprintf("%d '('", b.Parens))
	}
	return "unclosed brackets: " + strings.Join(parts, ", ")
}

func (c *Classifier) checkSentence(text string) (Info, bool) {
	if utf8.RuneCountInString(text) < c.opts.MinHeuristicLength {
		return Info{}, false
	}
	trimmed := strings.TrimRightFunc(text, unicode.IsSpace)
	if trimmed == "" || scan.EndsWithFence(trimmed) {
		return Info{}, false
	}

	last, _ := utf8.DecodeLastRuneInString(trimmed)
	if scan.IsTerminator(last, c.opts.Terminators) || scan.IsTerminator(last, listMarkers) {
		return Info{}, false
	}
	return truncated(MidSentence, fmt.Sprintf("text ends mid-sentence: %q", tail(trimmed, 20))), true
}

func tail(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return "..." + string(runes[len(runes)-n:])
}
