// ABOUTME: CLI command to classify a response as complete or truncated
// ABOUTME: Reads text from a file or stdin and prints the truncation verdict
package commands

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/harper/stitch/internal/models"
	"github.com/harper/stitch/internal/truncation"
)

var (
	classifyFinishReason string
	classifyMinLength    int
	classifyNoStructural bool
	classifyNoHeuristic  bool
)

// NewClassifyCmd creates the classify command
func NewClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [file]",
		Short: "Check whether a response was truncated",
		Long: `Check whether a model response was cut off.

The finish reason is checked first, then bracket and code fence balance,
then whether long text ends mid-sentence. Reads stdin when no file is given.

Exit status is zero either way; use --format json for scripting.

Examples:
  stitch classify answer.txt
  stitch classify --finish-reason length answer.txt
  cat answer.json | stitch classify --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runClassify,
	}

	cmd.Flags().StringVar(&classifyFinishReason, "finish-reason", "", "Provider finish reason (e.g. length, max_tokens, stop)")
	cmd.Flags().IntVar(&classifyMinLength, "min-length", 100, "Minimum length for the mid-sentence check (overrides config)")
	cmd.Flags().BoolVar(&classifyNoStructural, "no-structural", false, "Skip bracket and code fence checks")
	cmd.Flags().BoolVar(&classifyNoHeuristic, "no-heuristic", false, "Skip the mid-sentence check")

	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts := cfg.ClassifierOptions()
	if cmd.Flags().Changed("min-length") {
		if err := validateNonNegativeInt(classifyMinLength, "--min-length"); err != nil {
			return err
		}
		opts.MinHeuristicLength = classifyMinLength
	}
	if classifyNoStructural {
		opts.EnableStructural = false
	}
	if classifyNoHeuristic {
		opts.EnableHeuristic = false
	}
	classifier, err := truncation.New(opts)
	if err != nil {
		return err
	}

	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	info := classifier.Classify(&models.Completion{Content: text, RawFinish: classifyFinishReason})

	if jsonOutput() {
		return printJSON(cmd.OutOrStdout(), info)
	}

	if !info.IsTruncated {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", green("COMPLETE"))
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", red("TRUNCATED"), info.Reason)
		if info.Details != "" && !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", gray(info.Details))
		}
	}
	if verbose {
		preview := strings.Join(strings.Fields(text), " ")
		fmt.Fprintf(cmd.OutOrStdout(), "  %s %d chars: %s\n", gray("input"), utf8.RuneCountInString(text), truncate(preview, 60))
	}
	return nil
}
