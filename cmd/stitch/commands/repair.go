// ABOUTME: CLI command to repair truncated JSON or unterminated code blocks
// ABOUTME: Prints the repaired content on stdout and the repair status on stderr
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/stitch/internal/repair"
)

var (
	repairMode string
)

// NewRepairCmd creates the repair command
func NewRepairCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair [file]",
		Short: "Repair truncated JSON or code blocks",
		Long: `Repair a truncated response without calling a model.

Modes:
  json    close open strings and brackets, or trim to the longest valid prefix
  fences  close an unterminated markdown code block
  auto    try json on text opening with { or [, then fences if nothing changed (default)

The repaired text goes to stdout; the status goes to stderr.

Examples:
  stitch repair broken.json
  stitch repair --mode fences answer.md
  pbpaste | stitch repair --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRepair,
	}

	cmd.Flags().StringVar(&repairMode, "mode", "auto", "Repair mode (auto, json, fences)")

	return cmd
}

func runRepair(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	var result repair.Result
	switch repairMode {
	case "json":
		result = repair.RepairJSON(text)
	case "fences":
		result = repair.RepairFences(text)
	case "auto":
		if repair.LooksLikeJSON(text) {
			result = repair.RepairJSON(text)
		}
		if !result.Changed() {
			result = repair.RepairFences(text)
		}
	default:
		return fmt.Errorf("--mode must be auto, json or fences, got %q", repairMode)
	}

	if jsonOutput() {
		return printJSON(cmd.OutOrStdout(), result)
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Content)
	if !quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", statusLabel(result.Status), gray(result.Description))
	}
	return nil
}

func statusLabel(s repair.Status) string {
	switch s {
	case repair.Recovered:
		return green(s.String())
	case repair.PartiallyRecovered:
		return yellow(s.String())
	case repair.Failed:
		return red(s.String())
	default:
		return s.String()
	}
}
