// ABOUTME: Tests for the continuation benchmark runner and scoring
// ABOUTME: Every built-in scenario must pass; metrics and export are checked directly
package stitchbench

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/stitch/internal/continuation"
	"github.com/harper/stitch/internal/repair"
	"github.com/harper/stitch/internal/truncation"
)

func TestRunAllTests_AllPass(t *testing.T) {
	runner, err := NewBenchmarkRunner(&bytes.Buffer{}, false)
	require.NoError(t, err)

	results, err := runner.RunAllTests(context.Background())
	require.NoError(t, err)
	require.Len(t, results, len(GetAllTests()))

	for _, r := range results {
		assert.Equal(t, "PASS", r.Status, "%s: %v", r.TestID, r.Details)
		assert.InDelta(t, 1.0, r.OverallScore, 1e-9, r.TestID)
	}
}

func TestRunTest_Verbose(t *testing.T) {
	var out bytes.Buffer
	runner, err := NewBenchmarkRunner(&out, true)
	require.NoError(t, err)

	result, err := runner.RunTest(context.Background(), GetJSONRepairAtCap())
	require.NoError(t, err)
	assert.Equal(t, "recovered", result.Details["recovery"])
	assert.Contains(t, out.String(), "RESULTS: JSON closed after continuation cap")
}

func TestRunTest_Errors(t *testing.T) {
	runner, err := NewBenchmarkRunner(&bytes.Buffer{}, false)
	require.NoError(t, err)

	_, err = runner.RunTest(context.Background(), TestScenario{ID: "empty"})
	assert.Error(t, err)

	// Truncated initial response with nothing scripted after it
	_, err = runner.RunTest(context.Background(), TestScenario{
		ID:        "short",
		Fragments: []Fragment{{Content: "cut", FinishReason: "length"}},
	})
	assert.ErrorContains(t, err, "ran out of scripted fragments")
}

func TestGetTest(t *testing.T) {
	s, ok := GetTest("stalled")
	require.True(t, ok)
	assert.Equal(t, "Stalled continuation", s.Name)

	_, ok = GetTest("nope")
	assert.False(t, ok)
}

func TestMetrics(t *testing.T) {
	m := NewMetricsCalculator()
	truth := GroundTruth{ExpectTruncated: true, ExpectedReason: truncation.TokenLimit}

	score, _ := m.CalculateDetection(truncation.Info{IsTruncated: true, Reason: truncation.TokenLimit}, truth)
	assert.Equal(t, 1.0, score)
	score, _ = m.CalculateDetection(truncation.Info{IsTruncated: true, Reason: truncation.MidSentence}, truth)
	assert.Equal(t, 0.5, score)
	score, _ = m.CalculateDetection(truncation.Info{}, truth)
	assert.Equal(t, 0.0, score)

	score, _ = m.CalculateContent("alpha beta", []string{"alpha"}, []string{"gamma"})
	assert.Equal(t, 1.0, score)
	score, _ = m.CalculateContent("alpha gamma", []string{"alpha"}, []string{"gamma"})
	assert.Equal(t, 0.5, score)
	score, _ = m.CalculateContent("gamma", []string{"alpha"}, []string{"gamma"})
	assert.Equal(t, 0.0, score)

	result := &continuation.Result{
		FinalText:         `{"a": 1`,
		ContinuationCount: 2,
		Recovery:          repair.Result{Status: repair.Failed},
	}
	score, detail := m.CalculateStructure(result, GroundTruth{ExpectedContinuations: 2, ExpectValidJSON: true})
	assert.InDelta(t, 2.0/3.0, score, 1e-9)
	assert.Contains(t, detail, "not valid JSON")
}

func TestExportResults(t *testing.T) {
	var out bytes.Buffer
	runner, err := NewBenchmarkRunner(&out, false)
	require.NoError(t, err)

	results := []TestResult{
		{TestID: "a", Status: "PASS"},
		{TestID: "b", Status: "FAIL"},
	}
	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, runner.ExportResults(results, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var summary Summary
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, 2, summary.TotalTests)
	assert.Equal(t, 1, summary.Passed)
	assert.Equal(t, 1, summary.Failed)
	assert.Contains(t, out.String(), path)
}
