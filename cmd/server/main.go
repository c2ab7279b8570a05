// ABOUTME: Main entry point for the stitch MCP server with stdio transport
// ABOUTME: Loads config, builds the classifier and continuation engine, and serves all tools
package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/stitch/internal/config"
	"github.com/harper/stitch/internal/continuation"
	"github.com/harper/stitch/internal/llm"
	"github.com/harper/stitch/internal/log"
	"github.com/harper/stitch/internal/mcp"
	"github.com/harper/stitch/internal/truncation"
)

func main() {
	// Load .env file if it exists (for API keys)
	_ = godotenv.Load()

	cfg, err := config.LoadFile(os.Getenv("STITCH_CONFIG"))
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := log.New(&log.Config{
		Level:  cfg.LogLevel,
		Format: log.Format(cfg.LogFormat),
		Output: os.Stderr,
	})

	classifier, err := truncation.New(cfg.ClassifierOptions())
	if err != nil {
		logger.Error("invalid classifier options", slog.Any("error", err))
		os.Exit(1)
	}
	engine, err := continuation.NewEngine(cfg.ContinuationConfig(),
		continuation.WithClassifier(classifier),
		continuation.WithLogger(logger))
	if err != nil {
		logger.Error("invalid continuation config", slog.Any("error", err))
		os.Exit(1)
	}

	var provider llm.Provider
	if cfg.APIKey() == "" {
		logger.Warn("no API key set, complete_with_continuation is disabled", slog.String("provider", cfg.Provider))
	} else if p, err := llm.NewProvider(cfg); err != nil {
		logger.Warn("failed to initialize provider", slog.Any("error", err))
	} else {
		provider = p
	}

	server := mcpserver.NewMCPServer(
		"Stitch",
		"0.1.0",
	)
	mcp.RegisterTools(server, classifier, engine, provider, logger)

	logger.Info("stitch MCP server starting on stdio")
	if err := mcpserver.ServeStdio(server); err != nil {
		logger.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}
}
