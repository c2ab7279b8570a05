// ABOUTME: CLI command to join response fragments into one text
// ABOUTME: Each file argument is one fragment, joined in argument order
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harper/stitch/internal/repair"
)

// NewCombineCmd creates the combine command
func NewCombineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "combine <file>...",
		Short: "Join response fragments",
		Long: `Join response fragments in order. A single space is inserted at a seam
only when neither side has whitespace there and the text so far does not
end in punctuation. Empty fragments are skipped.

Examples:
  stitch combine part1.txt part2.txt part3.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCombine,
	}

	return cmd
}

func runCombine(cmd *cobra.Command, args []string) error {
	fragments := make([]string, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		fragments = append(fragments, string(data))
	}

	combined := repair.Combine(fragments)

	if jsonOutput() {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"fragments": len(fragments),
			"text":      combined,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), combined)
	return nil
}
