// ABOUTME: Version command showing build information and the effective setup
// ABOUTME: Reports provider, model, config source and continuation limits after loading config
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	versionInfo = VersionInfo{
		Version: "dev",
		Commit:  "none",
		Date:    "unknown",
	}
)

// VersionInfo contains build information
type VersionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// SetVersion sets the version information (called from main)
func SetVersion(version, commit, date string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.Date = date
}

// versionReport is the JSON shape of the version command
type versionReport struct {
	VersionInfo
	ConfigSource     string `json:"config_source"`
	Provider         string `json:"provider,omitempty"`
	Model            string `json:"model,omitempty"`
	APIKeySet        bool   `json:"api_key_set"`
	MaxContinuations int    `json:"max_continuations"`
	ConfigError      string `json:"config_error,omitempty"`
}

// NewVersionCmd creates the version command
func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version and effective configuration",
		Long: `Display the build version of the stitch CLI together with the provider,
model and continuation limit that commands would use with the current
config file and environment.`,
		Run: runVersion,
	}

	return cmd
}

func runVersion(cmd *cobra.Command, args []string) {
	report := versionReport{VersionInfo: versionInfo, ConfigSource: "environment"}
	if configPath != "" {
		report.ConfigSource = configPath
	}

	cfg, err := loadConfig()
	if err != nil {
		report.ConfigError = err.Error()
	} else {
		report.Provider = cfg.Provider
		report.Model = cfg.Model()
		report.APIKeySet = cfg.APIKey() != ""
		report.MaxContinuations = cfg.MaxContinuations
	}

	out := cmd.OutOrStdout()
	if jsonOutput() {
		_ = printJSON(out, report)
		return
	}

	fmt.Fprintf(out, "Stitch %s\n", report.Version)
	fmt.Fprintf(out, "Commit: %s\n", report.Commit)
	fmt.Fprintf(out, "Built:  %s\n", report.Date)
	if quiet {
		return
	}

	fmt.Fprintf(out, "Config: %s\n", report.ConfigSource)
	if report.ConfigError != "" {
		fmt.Fprintf(out, "  %s %s\n", red("invalid"), report.ConfigError)
		return
	}
	key := yellow("no API key")
	if report.APIKeySet {
		key = green("API key set")
	}
	fmt.Fprintf(out, "Provider: %s (%s, %s)\n", report.Provider, report.Model, key)
	fmt.Fprintf(out, "Max continuations: %d\n", report.MaxContinuations)
}
