// ABOUTME: CLI command to find the last clean break point in text
// ABOUTME: Prints the text up to the break, or its byte offset
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/stitch/internal/repair"
)

var (
	breakTerminators string
	breakOffsetOnly  bool
)

// cleanBreak is the JSON shape of the break command
type cleanBreak struct {
	Found bool   `json:"found"`
	Index int    `json:"index"`
	Head  string `json:"head"`
}

// NewBreakCmd creates the break command
func NewBreakCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "break [file]",
		Short: "Cut text at the last clean break",
		Long: `Find the last clean break in text: just after a sentence terminator,
else after a paragraph break, else after a newline.

Prints the text up to the break. With --offset, prints only the byte offset.

Examples:
  stitch break partial.txt
  stitch break --terminators ".;" notes.txt
  stitch break --offset partial.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: runBreak,
	}

	cmd.Flags().StringVar(&breakTerminators, "terminators", "", "Sentence terminator characters (default .!?。！？、)")
	cmd.Flags().BoolVar(&breakOffsetOnly, "offset", false, "Print only the byte offset of the break")

	return cmd
}

func runBreak(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	var idx int
	var found bool
	if breakTerminators != "" {
		idx, found = repair.FindCleanBreakWith(text, []rune(breakTerminators))
	} else {
		idx, found = repair.FindCleanBreak(text)
	}

	if jsonOutput() {
		return printJSON(cmd.OutOrStdout(), cleanBreak{Found: found, Index: idx, Head: text[:idx]})
	}

	if !found {
		return fmt.Errorf("no clean break found")
	}
	if breakOffsetOnly {
		fmt.Fprintln(cmd.OutOrStdout(), idx)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), text[:idx])
	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %d of %d bytes kept\n", gray("break:"), idx, len(text))
	}
	return nil
}
