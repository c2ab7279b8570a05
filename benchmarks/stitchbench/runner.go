// ABOUTME: Benchmark runner that replays scripted fragments through the continuation engine
// ABOUTME: Classifies, continues, scores and exports results without any network calls

package stitchbench

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/harper/stitch/internal/continuation"
	"github.com/harper/stitch/internal/log"
	"github.com/harper/stitch/internal/models"
	"github.com/harper/stitch/internal/truncation"
)

// BenchmarkRunner executes continuation benchmark scenarios
type BenchmarkRunner struct {
	classifier *truncation.Classifier
	metrics    *MetricsCalculator
	logger     *slog.Logger
	out        io.Writer
	verbose    bool
}

// NewBenchmarkRunner creates a runner that prints progress to out when verbose
func NewBenchmarkRunner(out io.Writer, verbose bool) (*BenchmarkRunner, error) {
	classifier, err := truncation.New(truncation.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize classifier: %w", err)
	}

	logger := log.Discard()
	if verbose {
		logger = log.New(&log.Config{Level: "debug", Format: log.FormatText, Output: out})
	}

	return &BenchmarkRunner{
		classifier: classifier,
		metrics:    NewMetricsCalculator(),
		logger:     logger,
		out:        out,
		verbose:    verbose,
	}, nil
}

// RunTest executes a single benchmark scenario
func (r *BenchmarkRunner) RunTest(ctx context.Context, scenario TestScenario) (TestResult, error) {
	if len(scenario.Fragments) == 0 {
		return TestResult{}, fmt.Errorf("scenario %s has no fragments", scenario.ID)
	}

	if r.verbose {
		fmt.Fprintf(r.out, "\n========================================\n")
		fmt.Fprintf(r.out, "RUNNING: %s\n", scenario.Name)
		fmt.Fprintf(r.out, "========================================\n")
		fmt.Fprintf(r.out, "Description: %s\n\n", scenario.Description)
	}

	cfg := continuation.DefaultConfig()
	if scenario.MaxContinuations > 0 {
		cfg.MaxContinuations = scenario.MaxContinuations
	}
	engine, err := continuation.NewEngine(cfg,
		continuation.WithClassifier(r.classifier),
		continuation.WithLogger(r.logger))
	if err != nil {
		return TestResult{}, fmt.Errorf("failed to create engine: %w", err)
	}

	responses := make([]models.Response, len(scenario.Fragments))
	for i, frag := range scenario.Fragments {
		responses[i] = &models.Completion{Content: frag.Content, RawFinish: frag.FinishReason}
	}

	initial := responses[0]
	pending := responses[1:]
	send := func(ctx context.Context, messages []models.Message) (models.Response, error) {
		if len(pending) == 0 {
			return nil, fmt.Errorf("scenario %s ran out of scripted fragments", scenario.ID)
		}
		next := pending[0]
		pending = pending[1:]
		return next, nil
	}

	messages := []models.Message{models.UserMessage(scenario.Description)}
	initialInfo := r.classifier.Classify(initial)

	start := time.Now()
	result, err := engine.Run(ctx, initial, messages, send)
	if err != nil {
		return TestResult{}, fmt.Errorf("continuation failed: %w", err)
	}
	elapsed := time.Since(start)

	evaluated := r.metrics.EvaluateTest(scenario, initialInfo, result)
	evaluated.Details["elapsed_us"] = elapsed.Microseconds()

	if r.verbose {
		fmt.Fprintf(r.out, "\n========================================\n")
		fmt.Fprintf(r.out, "RESULTS: %s\n", scenario.Name)
		fmt.Fprintf(r.out, "========================================\n")
		fmt.Fprintf(r.out, "Detection: %.2f\n", evaluated.DetectionScore)
		fmt.Fprintf(r.out, "Content: %.2f\n", evaluated.ContentScore)
		fmt.Fprintf(r.out, "Structure: %.2f\n", evaluated.StructureScore)
		fmt.Fprintf(r.out, "Overall Score: %.2f\n", evaluated.OverallScore)
		fmt.Fprintf(r.out, "Status: %s\n", evaluated.Status)
		fmt.Fprintf(r.out, "========================================\n\n")
	}

	return evaluated, nil
}

// RunAllTests executes all benchmark scenarios. Scenarios run concurrently
// unless the runner is verbose; results keep scenario order.
func (r *BenchmarkRunner) RunAllTests(ctx context.Context) ([]TestResult, error) {
	scenarios := GetAllTests()
	results := make([]TestResult, len(scenarios))

	g, ctx := errgroup.WithContext(ctx)
	if r.verbose {
		g.SetLimit(1)
	}
	for i, scenario := range scenarios {
		g.Go(func() error {
			result, err := r.RunTest(ctx, scenario)
			if err != nil {
				return fmt.Errorf("test %s failed: %w", scenario.ID, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// Summary is the exported benchmark report
type Summary struct {
	Timestamp  string       `json:"timestamp"`
	TotalTests int          `json:"total_tests"`
	Passed     int          `json:"passed"`
	Failed     int          `json:"failed"`
	Results    []TestResult `json:"results"`
}

// Summarize counts passes and failures
func Summarize(results []TestResult) Summary {
	summary := Summary{
		Timestamp:  time.Now().Format(time.RFC3339),
		TotalTests: len(results),
		Results:    results,
	}
	for _, result := range results {
		if result.Status == "PASS" {
			summary.Passed++
		} else {
			summary.Failed++
		}
	}
	return summary
}

// ExportResults writes the summary as JSON to outputPath
func (r *BenchmarkRunner) ExportResults(results []TestResult, outputPath string) error {
	jsonData, err := json.MarshalIndent(Summarize(results), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}

	fmt.Fprintf(r.out, "✓ Results exported to: %s\n", outputPath)
	return nil
}
