// ABOUTME: Root command and global flags for the stitch CLI
// ABOUTME: Wires every subcommand and enforces verbose/quiet exclusivity
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
	configPath   string
)

const banner = `
███████╗████████╗██╗████████╗ ██████╗██╗  ██╗
██╔════╝╚══██╔══╝██║╚══██╔══╝██╔════╝██║  ██║
███████╗   ██║   ██║   ██║   ██║     ███████║
╚════██║   ██║   ██║   ██║   ██║     ██╔══██║
███████║   ██║   ██║   ██║   ╚██████╗██║  ██║
╚══════╝   ╚═╝   ╚═╝   ╚═╝    ╚═════╝╚═╝  ╚═╝`

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stitch",
		Short: "Detect and repair truncated LLM responses",
		Long: banner + `

Stitch detects when a language model response was cut off, asks the
model to continue, and stitches the fragments back into one answer.

It can also repair truncated JSON, close unterminated code blocks and
find clean break points without calling a model at all.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose && quiet {
				return fmt.Errorf("--verbose and --quiet cannot be used together")
			}
			switch outputFormat {
			case "auto", "text", "json":
				return nil
			default:
				return fmt.Errorf("--format must be auto, text or json, got %q", outputFormat)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format (auto, text, json)")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML or TOML config file")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(
		NewClassifyCmd(),
		NewRepairCmd(),
		NewBreakCmd(),
		NewCombineCmd(),
		NewCompleteCmd(),
		NewMCPCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
