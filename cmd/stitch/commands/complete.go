// ABOUTME: CLI command to prompt a model and continue until the answer is complete
// ABOUTME: Runs the continuation engine against the configured provider
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/stitch/internal/continuation"
	"github.com/harper/stitch/internal/llm"
	"github.com/harper/stitch/internal/log"
	"github.com/harper/stitch/internal/models"
	"github.com/harper/stitch/internal/truncation"
)

var (
	completeSystem           string
	completeProvider         string
	completeMaxContinuations int
	completeThrowOnMax       bool
)

// newProvider is swapped out in tests
var newProvider = llm.NewProvider

// completeOutput is the JSON shape of the complete command
type completeOutput struct {
	RunID             string          `json:"run_id"`
	Provider          string          `json:"provider"`
	Model             string          `json:"model"`
	Text              string          `json:"text"`
	ContinuationCount int             `json:"continuation_count"`
	ReachedMax        bool            `json:"reached_max"`
	Recovery          string          `json:"recovery"`
	RecoveryDetails   string          `json:"recovery_details,omitempty"`
	Truncation        truncation.Info `json:"truncation"`
}

// NewCompleteCmd creates the complete command
func NewCompleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete <prompt>",
		Short: "Prompt a model and stitch continuations together",
		Long: `Send a prompt to the configured model. If the answer is truncated,
keep asking the model to continue until it finishes, stalls, or the
continuation limit is reached, then combine and repair the fragments.

Requires OPENAI_API_KEY or ANTHROPIC_API_KEY (a .env file is loaded).

Examples:
  stitch complete "List every US state as a JSON array"
  stitch complete --provider anthropic --max-continuations 3 "Write a long story"
  stitch complete --system "Reply in JSON" --format json "Describe Go channels"`,
		Args: cobra.ExactArgs(1),
		RunE: runComplete,
	}

	cmd.Flags().StringVar(&completeSystem, "system", "", "System prompt")
	cmd.Flags().StringVar(&completeProvider, "provider", "", "Provider override (openai, anthropic)")
	cmd.Flags().IntVar(&completeMaxContinuations, "max-continuations", 5, "Maximum continuation requests (overrides config)")
	cmd.Flags().BoolVar(&completeThrowOnMax, "fail-on-max", false, "Exit with an error when the continuation limit is reached")

	return cmd
}

func runComplete(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if completeProvider != "" {
		cfg.Provider = completeProvider
	}
	if cfg.APIKey() == "" {
		return fmt.Errorf("no API key configured for provider %q", cfg.Provider)
	}

	contCfg := cfg.ContinuationConfig()
	if cmd.Flags().Changed("max-continuations") {
		if err := validateNonNegativeInt(completeMaxContinuations, "--max-continuations"); err != nil {
			return err
		}
		contCfg.MaxContinuations = completeMaxContinuations
	}
	if completeThrowOnMax {
		contCfg.ThrowOnMaxContinuations = true
	}

	logger := newLogger(cmd, cfg)

	classifier, err := truncation.New(cfg.ClassifierOptions())
	if err != nil {
		return err
	}
	engine, err := continuation.NewEngine(contCfg,
		continuation.WithClassifier(classifier),
		continuation.WithLogger(logger))
	if err != nil {
		return err
	}

	provider, err := newProvider(cfg)
	if err != nil {
		return fmt.Errorf("initializing provider: %w", err)
	}
	logger = log.WithProvider(logger, provider.Name())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var messages []models.Message
	if completeSystem != "" {
		messages = append(messages, models.SystemMessage(completeSystem))
	}
	messages = append(messages, models.UserMessage(args[0]))

	logger.Debug("sending prompt", slog.String("model", provider.Model()))
	initial, err := provider.Send(ctx, messages)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	result, err := engine.Run(ctx, initial, messages, provider.Send)
	if err != nil {
		var maxErr *continuation.MaxContinuationsError
		if errors.As(err, &maxErr) && !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), maxErr.Text)
		}
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("interrupted: %w", err)
		}
		return err
	}

	if jsonOutput() {
		return printJSON(cmd.OutOrStdout(), completeOutput{
			RunID:             result.RunID,
			Provider:          provider.Name(),
			Model:             provider.Model(),
			Text:              result.FinalText,
			ContinuationCount: result.ContinuationCount,
			ReachedMax:        result.ReachedMax,
			Recovery:          result.Recovery.Status.String(),
			RecoveryDetails:   result.Recovery.Description,
			Truncation:        result.Truncation,
		})
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.FinalText)
	if !quiet {
		summary := fmt.Sprintf("%d continuation(s), recovery: %s", result.ContinuationCount, statusLabel(result.Recovery.Status))
		if result.ReachedMax {
			summary += ", " + yellow("continuation limit reached")
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", gray("stitch:"), summary)
	}
	return nil
}
