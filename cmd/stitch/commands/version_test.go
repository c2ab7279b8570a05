// ABOUTME: Tests for version command
// ABOUTME: Verifies version info display and SetVersion functionality

package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// isolateVersionEnv clears the variables that would override the config file
func isolateVersionEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"STITCH_PROVIDER", "ANTHROPIC_API_KEY", "OPENAI_API_KEY", "STITCH_ANTHROPIC_MODEL", "STITCH_OPENAI_MODEL", "STITCH_MAX_CONTINUATIONS"} {
		t.Setenv(key, "")
	}
}

func writeVersionConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestNewVersionCmd(t *testing.T) {
	cmd := NewVersionCmd()

	if cmd.Use != "version" {
		t.Errorf("Use = %q, want %q", cmd.Use, "version")
	}

	if cmd.Short == "" {
		t.Error("Short description should not be empty")
	}

	if cmd.Long == "" {
		t.Error("Long description should not be empty")
	}
}

func TestVersionCmd_Output(t *testing.T) {
	original := versionInfo
	defer func() { versionInfo = original }()

	SetVersion("1.2.3", "abc123", "2026-01-31")

	cmd := NewVersionCmd()
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetErr(&output)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	outputStr := output.String()

	expectedParts := []string{
		"Stitch 1.2.3",
		"Commit: abc123",
		"Built:  2026-01-31",
	}

	for _, expected := range expectedParts {
		if !strings.Contains(outputStr, expected) {
			t.Errorf("Output should contain %q, got:\n%s", expected, outputStr)
		}
	}
}

func TestSetVersion(t *testing.T) {
	original := versionInfo
	defer func() { versionInfo = original }()

	testCases := []struct {
		version string
		commit  string
		date    string
	}{
		{"1.0.0", "deadbeef", "2026-01-01"},
		{"dev", "none", "unknown"},
		{"2.0.0-beta", "1234567890abcdef", "2026-06-15T10:30:00Z"},
	}

	for _, tc := range testCases {
		t.Run(tc.version, func(t *testing.T) {
			SetVersion(tc.version, tc.commit, tc.date)

			if versionInfo.Version != tc.version {
				t.Errorf("Version = %q, want %q", versionInfo.Version, tc.version)
			}
			if versionInfo.Commit != tc.commit {
				t.Errorf("Commit = %q, want %q", versionInfo.Commit, tc.commit)
			}
			if versionInfo.Date != tc.date {
				t.Errorf("Date = %q, want %q", versionInfo.Date, tc.date)
			}
		})
	}
}

func TestVersionCmd_ExtraArgsIgnored(t *testing.T) {
	cmd := NewVersionCmd()
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs([]string{"extra", "args"})

	_ = cmd.Execute()

	if !strings.Contains(output.String(), "Stitch") {
		t.Error("Version output should still be produced with extra args")
	}
}

func TestVersionCmd_ReportsEffectiveConfig(t *testing.T) {
	isolateVersionEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	path := writeVersionConfig(t, "stitch.yaml", "provider: anthropic\nanthropic_model: claude-haiku-4-5\nmax_continuations: 2\n")

	stdout, _, err := runRoot(t, "", "--config", path, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}

	for _, want := range []string{
		"Config: " + path,
		"Provider: anthropic (claude-haiku-4-5, API key set)",
		"Max continuations: 2",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output should contain %q, got:\n%s", want, stdout)
		}
	}
}

func TestVersionCmd_DefaultsFromEnvironment(t *testing.T) {
	isolateVersionEnv(t)

	stdout, _, err := runRoot(t, "", "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}

	for _, want := range []string{"Config: environment", "Provider: openai (gpt-4o-mini, no API key)"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output should contain %q, got:\n%s", want, stdout)
		}
	}
}

func TestVersionCmd_InvalidConfig(t *testing.T) {
	isolateVersionEnv(t)
	path := writeVersionConfig(t, "bad.toml", "provider = \"gemini\"\n")

	stdout, _, err := runRoot(t, "", "--config", path, "version")
	if err != nil {
		t.Fatalf("version should still succeed, got %v", err)
	}
	if !strings.Contains(stdout, "Stitch ") {
		t.Errorf("build info missing:\n%s", stdout)
	}
	if !strings.Contains(stdout, "STITCH_PROVIDER") {
		t.Errorf("config error missing:\n%s", stdout)
	}
}

func TestVersionCmd_JSON(t *testing.T) {
	isolateVersionEnv(t)
	original := versionInfo
	defer func() { versionInfo = original }()
	SetVersion("1.2.3", "abc123", "2026-01-31")

	stdout, _, err := runRoot(t, "", "--format", "json", "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}

	var got versionReport
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout)
	}
	if got.Version != "1.2.3" || got.Commit != "abc123" {
		t.Errorf("build info = %+v", got.VersionInfo)
	}
	if got.Provider != "openai" || got.APIKeySet {
		t.Errorf("Provider = %q, APIKeySet = %v, want openai without key", got.Provider, got.APIKeySet)
	}
	if got.MaxContinuations != 5 {
		t.Errorf("MaxContinuations = %d, want 5", got.MaxContinuations)
	}
}
