// ABOUTME: Command-line benchmark runner for continuation scenarios
// ABOUTME: Replays scripted model fragments offline and outputs JSON results

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/harper/stitch/benchmarks/stitchbench"
)

func main() {
	// Command-line flags
	testID := flag.String("test", "", "Run specific scenario by ID. If empty, runs all scenarios.")
	outputPath := flag.String("output", "benchmark_results.json", "Output path for JSON results")
	verbose := flag.Bool("verbose", false, "Enable verbose output")
	flag.Parse()

	// Print header
	fmt.Println("========================================")
	fmt.Println("Stitch Continuation Benchmarks")
	fmt.Println("========================================")
	fmt.Println()

	runner, err := stitchbench.NewBenchmarkRunner(os.Stdout, *verbose)
	if err != nil {
		log.Fatalf("Failed to create benchmark runner: %v", err)
	}

	ctx := context.Background()
	var results []stitchbench.TestResult

	if *testID == "" {
		fmt.Println("Running all continuation benchmark scenarios...")
		fmt.Println()

		results, err = runner.RunAllTests(ctx)
		if err != nil {
			log.Fatalf("Benchmark failed: %v", err)
		}
	} else {
		scenario, ok := stitchbench.GetTest(*testID)
		if !ok {
			var ids []string
			for _, s := range stitchbench.GetAllTests() {
				ids = append(ids, s.ID)
			}
			log.Fatalf("Unknown test ID: %s (valid options: %s)", *testID, strings.Join(ids, ", "))
		}

		fmt.Printf("Running test: %s\n\n", scenario.Name)

		result, err := runner.RunTest(ctx, scenario)
		if err != nil {
			log.Fatalf("Test failed: %v", err)
		}

		results = []stitchbench.TestResult{result}
	}

	// Print summary
	fmt.Println("\n========================================")
	fmt.Println("BENCHMARK SUMMARY")
	fmt.Println("========================================")

	for _, result := range results {
		fmt.Printf("\n%s: %s\n", result.TestID, result.TestName)
		fmt.Printf("  Detection: %.2f\n", result.DetectionScore)
		fmt.Printf("  Content: %.2f\n", result.ContentScore)
		fmt.Printf("  Structure: %.2f\n", result.StructureScore)
		fmt.Printf("  Overall: %.2f\n", result.OverallScore)
		fmt.Printf("  Status: %s\n", result.Status)
	}

	summary := stitchbench.Summarize(results)
	fmt.Println("\n========================================")
	fmt.Printf("Total Tests: %d\n", summary.TotalTests)
	fmt.Printf("Passed: %d\n", summary.Passed)
	fmt.Printf("Failed: %d\n", summary.Failed)
	fmt.Println("========================================")

	// Export results
	if err := runner.ExportResults(results, *outputPath); err != nil {
		log.Fatalf("Failed to export results: %v", err)
	}

	// Exit with error code if any tests failed
	if summary.Failed > 0 {
		os.Exit(1)
	}
}
