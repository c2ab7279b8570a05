// ABOUTME: Scoring for continuation benchmarks
// ABOUTME: Deterministic evaluation of detection, final content and structure against ground truth

package stitchbench

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harper/stitch/internal/continuation"
	"github.com/harper/stitch/internal/scan"
	"github.com/harper/stitch/internal/truncation"
)

// passThreshold is the minimum score every metric needs for a PASS
const passThreshold = 0.9

// MetricsCalculator computes scores for benchmark scenarios
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateDetection scores the classification of the initial response (0.0-1.0).
// A correct verdict with the wrong reason scores 0.5.
func (m *MetricsCalculator) CalculateDetection(info truncation.Info, truth GroundTruth) (float64, string) {
	if info.IsTruncated != truth.ExpectTruncated {
		return 0.0, fmt.Sprintf("Detection failure - truncated = %v, want %v", info.IsTruncated, truth.ExpectTruncated)
	}
	if info.Reason != truth.ExpectedReason {
		return 0.5, fmt.Sprintf("Partial detection - reason %s, want %s", info.Reason, truth.ExpectedReason)
	}
	return 1.0, fmt.Sprintf("Correct detection (%s)", info.Reason)
}

// CalculateContent checks required and forbidden substrings in the final text (0.0-1.0)
func (m *MetricsCalculator) CalculateContent(final string, expected, forbidden []string) (float64, string) {
	var missing, found []string
	for _, want := range expected {
		if !strings.Contains(final, want) {
			missing = append(missing, want)
		}
	}
	for _, bad := range forbidden {
		if strings.Contains(final, bad) {
			found = append(found, bad)
		}
	}

	switch {
	case len(missing) == 0 && len(found) == 0:
		return 1.0, "Final text matches ground truth"
	case len(missing) > 0 && len(found) > 0:
		return 0.0, fmt.Sprintf("Content failure - missing: %v, forbidden found: %v", missing, found)
	case len(missing) > 0:
		return 0.5, fmt.Sprintf("Partial content - missing: %v", missing)
	default:
		return 0.5, fmt.Sprintf("Partial content - forbidden found: %v", found)
	}
}

// CalculateStructure scores continuation bookkeeping and repaired structure (0.0-1.0)
// as the fraction of applicable checks that hold.
func (m *MetricsCalculator) CalculateStructure(result *continuation.Result, truth GroundTruth) (float64, string) {
	var failures []string
	checks := 2

	if result.ContinuationCount != truth.ExpectedContinuations {
		failures = append(failures, fmt.Sprintf("continuations = %d, want %d", result.ContinuationCount, truth.ExpectedContinuations))
	}
	if result.ReachedMax != truth.ExpectReachedMax {
		failures = append(failures, fmt.Sprintf("reached max = %v, want %v", result.ReachedMax, truth.ExpectReachedMax))
	}
	if truth.ExpectValidJSON {
		checks++
		if !json.Valid([]byte(result.FinalText)) {
			failures = append(failures, "final text is not valid JSON")
		}
	}
	if truth.ExpectClosedCode {
		checks++
		if scan.InsideFence(result.FinalText) {
			failures = append(failures, "code block left open")
		}
	}

	score := float64(checks-len(failures)) / float64(checks)
	if len(failures) == 0 {
		return score, "Structure verified"
	}
	return score, "Structure issues: " + strings.Join(failures, "; ")
}

// EvaluateTest runs full evaluation for a scenario
func (m *MetricsCalculator) EvaluateTest(scenario TestScenario, initial truncation.Info, result *continuation.Result) TestResult {
	truth := scenario.GroundTruth

	detection, detectionDetail := m.CalculateDetection(initial, truth)
	content, contentDetail := m.CalculateContent(result.FinalText, truth.ExpectedInFinal, truth.ForbiddenInFinal)
	structure, structureDetail := m.CalculateStructure(result, truth)

	overall := (detection + content + structure) / 3.0

	status := "FAIL"
	if detection >= passThreshold && content >= passThreshold && structure >= passThreshold {
		status = "PASS"
	}

	return TestResult{
		TestID:         scenario.ID,
		TestName:       scenario.Name,
		DetectionScore: detection,
		ContentScore:   content,
		StructureScore: structure,
		OverallScore:   overall,
		Status:         status,
		Details: map[string]interface{}{
			"detection_detail":   detectionDetail,
			"content_detail":     contentDetail,
			"structure_detail":   structureDetail,
			"recovery":           result.Recovery.Status.String(),
			"continuation_count": result.ContinuationCount,
			"final_text":         preview(result.FinalText, 200),
		},
	}
}

func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
