// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Enables LLM agents like Claude to use stitch via stdio
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/stitch/internal/continuation"
	"github.com/harper/stitch/internal/llm"
	"github.com/harper/stitch/internal/mcp"
	"github.com/harper/stitch/internal/truncation"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs stitch as an MCP (Model Context Protocol) server, enabling
LLM agents like Claude to classify truncated output, repair JSON and
code blocks, and run continuations via stdio.

The complete_with_continuation tool needs OPENAI_API_KEY or
ANTHROPIC_API_KEY; the other tools work offline.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by Claude Desktop)
  stitch mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "stitch": {
  #       "command": "stitch",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)

	classifier, err := truncation.New(cfg.ClassifierOptions())
	if err != nil {
		return err
	}
	engine, err := continuation.NewEngine(cfg.ContinuationConfig(),
		continuation.WithClassifier(classifier),
		continuation.WithLogger(logger))
	if err != nil {
		return err
	}

	// The provider is optional; offline tools still work without it
	var provider llm.Provider
	if cfg.APIKey() == "" {
		logger.Warn("no API key set, complete_with_continuation is disabled", slog.String("provider", cfg.Provider))
	} else if p, err := llm.NewProvider(cfg); err != nil {
		logger.Warn("failed to initialize provider", slog.Any("error", err))
	} else {
		provider = p
		logger.Debug("provider initialized", slog.String("provider", p.Name()), slog.String("model", p.Model()))
	}

	server := mcpserver.NewMCPServer(
		"Stitch",
		versionInfo.Version,
	)
	mcp.RegisterTools(server, classifier, engine, provider, logger)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("stitch MCP server starting on stdio")

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
