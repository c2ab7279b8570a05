// ABOUTME: Centralized configuration for the stitch CLI and MCP server
// ABOUTME: Loads defaults, an optional YAML or TOML file, then environment overrides, with validation
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/harper/stitch/internal/continuation"
	"github.com/harper/stitch/internal/truncation"
)

// Config holds all configuration for stitch
type Config struct {
	// Provider settings
	Provider         string        `yaml:"provider" toml:"provider"`
	OpenAIKey        string        `yaml:"-" toml:"-"`
	OpenAIBaseURL    string        `yaml:"openai_base_url" toml:"openai_base_url"`
	OpenAIModel      string        `yaml:"openai_model" toml:"openai_model"`
	AnthropicKey     string        `yaml:"-" toml:"-"`
	AnthropicBaseURL string        `yaml:"anthropic_base_url" toml:"anthropic_base_url"`
	AnthropicModel   string        `yaml:"anthropic_model" toml:"anthropic_model"`
	MaxTokens        int           `yaml:"max_tokens" toml:"max_tokens"`
	Temperature      float32       `yaml:"temperature" toml:"temperature"`
	Timeout          time.Duration `yaml:"timeout" toml:"timeout"`
	MaxRetries       int           `yaml:"max_retries" toml:"max_retries"`
	RetryDelay       time.Duration `yaml:"retry_delay" toml:"retry_delay"`

	// Provider request rate; 0 means unlimited
	RequestsPerSecond float64 `yaml:"requests_per_second" toml:"requests_per_second"`

	// Continuation settings
	MaxContinuations           int           `yaml:"max_continuations" toml:"max_continuations"`
	MaxTotalDuration           time.Duration `yaml:"max_total_duration" toml:"max_total_duration"`
	ContinuationDelay          time.Duration `yaml:"continuation_delay" toml:"continuation_delay"`
	JSONRecovery               bool          `yaml:"json_recovery" toml:"json_recovery"`
	CodeBlockRecovery          bool          `yaml:"code_block_recovery" toml:"code_block_recovery"`
	ContinuationPrompt         string        `yaml:"continuation_prompt" toml:"continuation_prompt"`
	IncludePreviousResponse    bool          `yaml:"include_previous_response" toml:"include_previous_response"`
	MinProgressPerContinuation int           `yaml:"min_progress" toml:"min_progress"`
	ThrowOnMaxContinuations    bool          `yaml:"throw_on_max" toml:"throw_on_max"`

	// Classifier settings
	StructuralCheck    bool `yaml:"structural_check" toml:"structural_check"`
	HeuristicCheck     bool `yaml:"heuristic_check" toml:"heuristic_check"`
	HeuristicMinLength int  `yaml:"heuristic_min_length" toml:"heuristic_min_length"`

	// Logging settings
	LogLevel  string `yaml:"log_level" toml:"log_level"`
	LogFormat string `yaml:"log_format" toml:"log_format"`
}

// Default returns the built-in configuration
func Default() *Config {
	cont := continuation.DefaultConfig()
	cls := truncation.DefaultOptions()

	return &Config{
		Provider:       "openai",
		OpenAIModel:    "gpt-4o-mini",
		AnthropicModel: "claude-sonnet-4-5",
		MaxTokens:      1024,
		Temperature:    0.3,
		Timeout:        60 * time.Second,
		MaxRetries:     3,
		RetryDelay:     2 * time.Second,

		MaxContinuations:           cont.MaxContinuations,
		MaxTotalDuration:           cont.MaxTotalDuration,
		ContinuationDelay:          cont.DelayBetweenContinuations,
		JSONRecovery:               cont.EnableJSONRecovery,
		CodeBlockRecovery:          cont.EnableCodeBlockRecovery,
		ContinuationPrompt:         cont.ContinuationPrompt,
		IncludePreviousResponse:    cont.IncludePreviousResponse,
		MinProgressPerContinuation: cont.MinProgressPerContinuation,
		ThrowOnMaxContinuations:    cont.ThrowOnMaxContinuations,

		StructuralCheck:    cls.EnableStructural,
		HeuristicCheck:     cls.EnableHeuristic,
		HeuristicMinLength: cls.MinHeuristicLength,

		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := Default()
	cfg.applyEnv()
	return cfg, cfg.Validate()
}

// LoadFile reads a YAML or TOML config file (chosen by extension), then
// applies environment overrides. An empty path behaves like Load.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if strings.EqualFold(filepath.Ext(path), ".toml") {
			_, err = toml.Decode(string(data), cfg)
		} else {
			err = yaml.Unmarshal(data, cfg)
		}
		if err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() {
	c.Provider = getEnv("STITCH_PROVIDER", c.Provider)
	c.OpenAIKey = getEnv("OPENAI_API_KEY", c.OpenAIKey)
	c.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", c.OpenAIBaseURL)
	c.OpenAIModel = getEnv("STITCH_OPENAI_MODEL", c.OpenAIModel)
	c.AnthropicKey = getEnv("ANTHROPIC_API_KEY", c.AnthropicKey)
	c.AnthropicBaseURL = getEnv("ANTHROPIC_BASE_URL", c.AnthropicBaseURL)
	c.AnthropicModel = getEnv("STITCH_ANTHROPIC_MODEL", c.AnthropicModel)
	c.MaxTokens = getEnvInt("STITCH_MAX_TOKENS", c.MaxTokens)
	c.Temperature = float32(getEnvFloat("STITCH_TEMPERATURE", float64(c.Temperature)))
	c.Timeout = getEnvDuration("STITCH_TIMEOUT", c.Timeout)
	c.MaxRetries = getEnvInt("STITCH_MAX_RETRIES", c.MaxRetries)
	c.RetryDelay = getEnvDuration("STITCH_RETRY_DELAY", c.RetryDelay)
	c.RequestsPerSecond = getEnvFloat("STITCH_RATE_LIMIT", c.RequestsPerSecond)

	c.MaxContinuations = getEnvInt("STITCH_MAX_CONTINUATIONS", c.MaxContinuations)
	c.MaxTotalDuration = getEnvDuration("STITCH_MAX_TOTAL_DURATION", c.MaxTotalDuration)
	c.ContinuationDelay = getEnvDuration("STITCH_CONTINUATION_DELAY", c.ContinuationDelay)
	c.JSONRecovery = getEnvBool("STITCH_JSON_RECOVERY", c.JSONRecovery)
	c.CodeBlockRecovery = getEnvBool("STITCH_CODE_RECOVERY", c.CodeBlockRecovery)
	c.ContinuationPrompt = getEnv("STITCH_CONTINUATION_PROMPT", c.ContinuationPrompt)
	c.IncludePreviousResponse = getEnvBool("STITCH_INCLUDE_PREVIOUS", c.IncludePreviousResponse)
	c.MinProgressPerContinuation = getEnvInt("STITCH_MIN_PROGRESS", c.MinProgressPerContinuation)
	c.ThrowOnMaxContinuations = getEnvBool("STITCH_THROW_ON_MAX", c.ThrowOnMaxContinuations)

	c.StructuralCheck = getEnvBool("STITCH_STRUCTURAL_CHECK", c.StructuralCheck)
	c.HeuristicCheck = getEnvBool("STITCH_HEURISTIC_CHECK", c.HeuristicCheck)
	c.HeuristicMinLength = getEnvInt("STITCH_HEURISTIC_MIN_LENGTH", c.HeuristicMinLength)

	c.LogLevel = getEnv("STITCH_LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("STITCH_LOG_FORMAT", c.LogFormat)
}

func (c *Config) Validate() error {
	if c.Provider != "openai" && c.Provider != "anthropic" {
		return fmt.Errorf("STITCH_PROVIDER must be openai or anthropic, got %q", c.Provider)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("STITCH_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("STITCH_MAX_TOKENS must be positive, got %d", c.MaxTokens)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("STITCH_TEMPERATURE must be 0-2, got %f", c.Temperature)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("STITCH_RATE_LIMIT must not be negative, got %f", c.RequestsPerSecond)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("STITCH_LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	if err := c.ContinuationConfig().Validate(); err != nil {
		return err
	}
	return c.ClassifierOptions().Validate()
}

// APIKey returns the key for the selected provider
func (c *Config) APIKey() string {
	if c.Provider == "anthropic" {
		return c.AnthropicKey
	}
	return c.OpenAIKey
}

// Model returns the model name for the selected provider
func (c *Config) Model() string {
	if c.Provider == "anthropic" {
		return c.AnthropicModel
	}
	return c.OpenAIModel
}

// ContinuationConfig projects the continuation policy
func (c *Config) ContinuationConfig() continuation.Config {
	return continuation.Config{
		MaxContinuations:           c.MaxContinuations,
		MaxTotalDuration:           c.MaxTotalDuration,
		DelayBetweenContinuations:  c.ContinuationDelay,
		EnableJSONRecovery:         c.JSONRecovery,
		EnableCodeBlockRecovery:    c.CodeBlockRecovery,
		ContinuationPrompt:         c.ContinuationPrompt,
		IncludePreviousResponse:    c.IncludePreviousResponse,
		MinProgressPerContinuation: c.MinProgressPerContinuation,
		ThrowOnMaxContinuations:    c.ThrowOnMaxContinuations,
	}
}

// ClassifierOptions projects the truncation classifier options
func (c *Config) ClassifierOptions() truncation.Options {
	opts := truncation.DefaultOptions()
	opts.EnableStructural = c.StructuralCheck
	opts.EnableHeuristic = c.HeuristicCheck
	opts.MinHeuristicLength = c.HeuristicMinLength
	return opts
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
