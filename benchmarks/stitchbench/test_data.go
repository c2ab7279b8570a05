// ABOUTME: Scenario data structures for continuation benchmarks
// ABOUTME: Defines scripted model fragments and the ground truth for each scenario

package stitchbench

import (
	"strings"

	"github.com/harper/stitch/internal/truncation"
)

// TestScenario is one scripted continuation run
type TestScenario struct {
	ID          string
	Name        string
	Description string
	// Fragments are the model responses in order; the first is the initial answer
	Fragments        []Fragment
	MaxContinuations int // 0 uses the engine default
	GroundTruth      GroundTruth
}

// Fragment is one scripted model response
type Fragment struct {
	Content      string
	FinishReason string
}

// GroundTruth defines expected outcomes for a scenario
type GroundTruth struct {
	// Classification of the initial response
	ExpectTruncated bool
	ExpectedReason  truncation.Reason

	// Continuation bookkeeping
	ExpectedContinuations int
	ExpectReachedMax      bool

	// Final text checks
	ExpectedInFinal  []string
	ForbiddenInFinal []string
	ExpectValidJSON  bool
	ExpectClosedCode bool
}

// TestResult represents the outcome of a benchmark scenario
type TestResult struct {
	TestID         string                 `json:"test_id"`
	TestName       string                 `json:"test_name"`
	DetectionScore float64                `json:"detection_score"`
	ContentScore   float64                `json:"content_score"`
	StructureScore float64                `json:"structure_score"`
	OverallScore   float64                `json:"overall_score"`
	Status         string                 `json:"status"` // "PASS" or "FAIL"
	Details        map[string]interface{} `json:"details,omitempty"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
}

// GetJSONTokenLimit returns a JSON array split across two responses
func GetJSONTokenLimit() TestScenario {
	return TestScenario{
		ID:          "json_token_limit",
		Name:        "JSON split by token limit",
		Description: "A JSON document cut at max tokens is finished by one continuation",
		Fragments: []Fragment{
			{Content: `{"states": ["Alabama", "Alaska",`, FinishReason: "length"},
			{Content: `"Arizona", "Arkansas"]}`, FinishReason: "stop"},
		},
		GroundTruth: GroundTruth{
			ExpectTruncated:       true,
			ExpectedReason:        truncation.TokenLimit,
			ExpectedContinuations: 1,
			ExpectedInFinal:       []string{"Alabama", "Arkansas"},
			ExpectValidJSON:       true,
		},
	}
}

// GetJSONRepairAtCap returns JSON that is still open when the cap is hit
func GetJSONRepairAtCap() TestScenario {
	return TestScenario{
		ID:               "json_repair_at_cap",
		Name:             "JSON closed after continuation cap",
		Description:      "Continuations run out before the document closes, so closure repair finishes it",
		MaxContinuations: 1,
		Fragments: []Fragment{
			{Content: `{"items": [1, 2, 3,`, FinishReason: "length"},
			{Content: ` 4, 5, 6, 7, 8`, FinishReason: "length"},
		},
		GroundTruth: GroundTruth{
			ExpectTruncated:       true,
			ExpectedReason:        truncation.TokenLimit,
			ExpectedContinuations: 1,
			ExpectReachedMax:      true,
			ExpectedInFinal:       []string{"8]}"},
			ExpectValidJSON:       true,
		},
	}
}

// GetEscapedQuotes returns JSON split inside a string with escaped quotes
func GetEscapedQuotes() TestScenario {
	return TestScenario{
		ID:          "escaped_quotes",
		Name:        "Split inside escaped string",
		Description: "The split lands inside a JSON string holding escaped quotes",
		Fragments: []Fragment{
			{Content: `{"quote": "she said \"hi`, FinishReason: "max_tokens"},
			{Content: `\" and left"}`, FinishReason: "end_turn"},
		},
		GroundTruth: GroundTruth{
			ExpectTruncated:       true,
			ExpectedReason:        truncation.TokenLimit,
			ExpectedContinuations: 1,
			ExpectedInFinal:       []string{"and left"},
			ExpectValidJSON:       true,
		},
	}
}

// GetCodeFenceAtCap returns a code block left open when the cap is hit
func GetCodeFenceAtCap() TestScenario {
	return TestScenario{
		ID:               "code_fence_at_cap",
		Name:             "Code block closed after continuation cap",
		Description:      "An unterminated code block is closed by fence repair",
		MaxContinuations: 1,
		Fragments: []Fragment{
			{Content: "Here is the script:\n\n```python\nprint(1)\n", FinishReason: "length"},
			{Content: "print(2)\nprint(3)\n", FinishReason: "length"},
		},
		GroundTruth: GroundTruth{
			ExpectTruncated:       true,
			ExpectedReason:        truncation.TokenLimit,
			ExpectedContinuations: 1,
			ExpectReachedMax:      true,
			ExpectedInFinal:       []string{"print(3)\n```"},
			ExpectClosedCode:      true,
		},
	}
}

// GetCJKMidSentence returns Japanese prose that stops mid-sentence
func GetCJKMidSentence() TestScenario {
	return TestScenario{
		ID:          "cjk_mid_sentence",
		Name:        "Japanese prose mid-sentence",
		Description: "No finish reason; the heuristic tier catches a missing 。",
		Fragments: []Fragment{
			{Content: strings.Repeat("これは長い文章です。", 10) + "そして次に"},
			{Content: "続きがあります。", FinishReason: "stop"},
		},
		GroundTruth: GroundTruth{
			ExpectTruncated:       true,
			ExpectedReason:        truncation.MidSentence,
			ExpectedContinuations: 1,
			ExpectedInFinal:       []string{"そして次に", "続きがあります。"},
		},
	}
}

// GetStalled returns a run that stops making progress
func GetStalled() TestScenario {
	return TestScenario{
		ID:          "stalled",
		Name:        "Stalled continuation",
		Description: "A continuation that adds almost nothing ends the run early",
		Fragments: []Fragment{
			{Content: "The answer begins with", FinishReason: "length"},
			{Content: "ok", FinishReason: "length"},
			{Content: "this fragment is never requested", FinishReason: "stop"},
		},
		GroundTruth: GroundTruth{
			ExpectTruncated:       true,
			ExpectedReason:        truncation.TokenLimit,
			ExpectedContinuations: 1,
			ExpectedInFinal:       []string{"The answer begins with ok"},
			ForbiddenInFinal:      []string{"never requested"},
		},
	}
}

// GetCompleteFirst returns a response that needs no continuation
func GetCompleteFirst() TestScenario {
	return TestScenario{
		ID:          "complete_first",
		Name:        "Complete on first response",
		Description: "A finished answer passes through untouched",
		Fragments: []Fragment{
			{Content: "Everything fits in one response.", FinishReason: "stop"},
		},
		GroundTruth: GroundTruth{
			ExpectTruncated: false,
			ExpectedReason:  truncation.None,
			ExpectedInFinal: []string{"Everything fits in one response."},
		},
	}
}

// GetAllTests returns all benchmark scenarios
func GetAllTests() []TestScenario {
	return []TestScenario{
		GetJSONTokenLimit(),
		GetJSONRepairAtCap(),
		GetEscapedQuotes(),
		GetCodeFenceAtCap(),
		GetCJKMidSentence(),
		GetStalled(),
		GetCompleteFirst(),
	}
}

// GetTest returns the scenario with the given ID
func GetTest(id string) (TestScenario, bool) {
	for _, s := range GetAllTests() {
		if s.ID == id {
			return s, true
		}
	}
	return TestScenario{}, false
}
