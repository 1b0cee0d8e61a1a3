package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ziadkadry99/toolprobe/internal/llm"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != ProviderAnthropic {
		t.Errorf("expected default provider %q, got %q", ProviderAnthropic, cfg.Provider)
	}
	if cfg.MaxTokens != 1024 {
		t.Errorf("expected default max_tokens 1024, got %d", cfg.MaxTokens)
	}
	if cfg.Prompt != DefaultPrompt {
		t.Errorf("expected default prompt %q, got %q", DefaultPrompt, cfg.Prompt)
	}
	if len(cfg.Tools) != 1 || cfg.Tools[0].Type != "bash_20250124" || cfg.Tools[0].Name != "bash" {
		t.Errorf("expected default bash tool, got %+v", cfg.Tools)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.toolprobe.yml")

	original := DefaultConfig()
	original.Provider = ProviderOpenAI
	original.Model = "gpt-4o-mini"
	original.MaxTokens = 256
	original.Prompt = "Show the current directory."
	original.Tools = []llm.Tool{{Name: "lookup"}, llm.BashTool()}
	original.AnthropicBeta = []string{"token-efficient-tools-2025-02-19"}
	original.Server.Schedule = "@every 5m"

	// Save.
	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Load back.
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Verify round-trip.
	if loaded.Provider != original.Provider {
		t.Errorf("provider: got %q, want %q", loaded.Provider, original.Provider)
	}
	if loaded.Model != original.Model {
		t.Errorf("model: got %q, want %q", loaded.Model, original.Model)
	}
	if loaded.MaxTokens != original.MaxTokens {
		t.Errorf("max_tokens: got %d, want %d", loaded.MaxTokens, original.MaxTokens)
	}
	if loaded.Prompt != original.Prompt {
		t.Errorf("prompt: got %q, want %q", loaded.Prompt, original.Prompt)
	}
	if loaded.Server.Schedule != original.Server.Schedule {
		t.Errorf("schedule: got %q, want %q", loaded.Server.Schedule, original.Server.Schedule)
	}
	if len(loaded.Tools) != len(original.Tools) {
		t.Fatalf("tools length: got %d, want %d", len(loaded.Tools), len(original.Tools))
	}
	for i, tool := range loaded.Tools {
		if tool != original.Tools[i] {
			t.Errorf("tools[%d]: got %+v, want %+v", i, tool, original.Tools[i])
		}
	}
	if len(loaded.AnthropicBeta) != 1 {
		t.Errorf("anthropic_beta: got %v", loaded.AnthropicBeta)
	}
}

func TestLoadToolsReplaceDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tools.yml")
	content := "tools:\n  - name: lookup\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Tools) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(cfg.Tools))
	}
	if cfg.Tools[0].Type != "" || cfg.Tools[0].Name != "lookup" {
		t.Errorf("expected bare lookup tool, got %+v", cfg.Tools[0])
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Provider != ProviderAnthropic {
		t.Errorf("expected default provider, got %q", cfg.Provider)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing.yml")

	t.Setenv("TOOLPROBE_PROVIDER", "openai")
	t.Setenv("TOOLPROBE_MAX_TOKENS", "64")
	t.Setenv("TOOLPROBE_SERVER__PORT", "9090")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Provider != ProviderOpenAI {
		t.Errorf("env override failed: got %q, want %q", loaded.Provider, ProviderOpenAI)
	}
	if loaded.Model != DefaultModel(ProviderOpenAI) {
		t.Errorf("expected provider default model, got %q", loaded.Model)
	}
	if loaded.MaxTokens != 64 {
		t.Errorf("max_tokens: got %d, want 64", loaded.MaxTokens)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("server.port: got %d, want 9090", loaded.Server.Port)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("TOOLPROBE_TEST_KEY=from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TOOLPROBE_TEST_KEY", "")
	os.Unsetenv("TOOLPROBE_TEST_KEY")

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	if got := os.Getenv("TOOLPROBE_TEST_KEY"); got != "from-file" {
		t.Errorf("expected value from env file, got %q", got)
	}

	if err := LoadEnvFile(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("missing env file should not fail: %v", err)
	}
}

func TestValidateValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"invalid provider", func(c *Config) { c.Provider = "invalid" }},
		{"empty provider", func(c *Config) { c.Provider = "" }},
		{"empty model", func(c *Config) { c.Model = "" }},
		{"zero max tokens", func(c *Config) { c.MaxTokens = 0 }},
		{"blank prompt", func(c *Config) { c.Prompt = "   " }},
		{"unnamed tool", func(c *Config) { c.Tools = []llm.Tool{{Type: "bash_20250124"}} }},
		{"negative timeout", func(c *Config) { c.TimeoutSeconds = -1 }},
		{"bad schedule", func(c *Config) { c.Server.Schedule = "every now and then" }},
		{"bad notify severity", func(c *Config) { c.Notify.MinSeverity = "loud" }},
		{"non-http webhook", func(c *Config) { c.Notify.Webhooks = []string{"ftp://example.com/hook"} }},
		{"negative temperature", func(c *Config) { c.Temperature = floatPtr(-0.5) }},
		{"temperature above 2", func(c *Config) { c.Temperature = floatPtr(2.5) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateTemperature(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Temperature != nil {
		t.Fatalf("default temperature should be unset, got %v", *cfg.Temperature)
	}
	for _, v := range []float64{0, 1, 2} {
		cfg.Temperature = floatPtr(v)
		if err := cfg.Validate(); err != nil {
			t.Errorf("temperature %g should be valid, got: %v", v, err)
		}
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestValidateAllowsNoTools(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tools = nil
	if err := cfg.Validate(); err != nil {
		t.Errorf("config without tools should be valid, got: %v", err)
	}
}

func TestDefaultModel(t *testing.T) {
	if got := DefaultModel(ProviderOllama); got != "llama3.1" {
		t.Errorf("expected llama3.1, got %q", got)
	}
	if got := DefaultModel("unknown"); got != "claude-sonnet-4-5-20250929" {
		t.Errorf("expected fallback to sonnet, got %q", got)
	}
}

func TestProviderOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseURL = "http://gateway.local"
	cfg.TimeoutSeconds = 30
	opts := cfg.ProviderOptions()
	if opts.BaseURL != "http://gateway.local" {
		t.Errorf("base url: got %q", opts.BaseURL)
	}
	if opts.Timeout != 30*time.Second {
		t.Errorf("timeout: got %v", opts.Timeout)
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	tests := []struct {
		provider ProviderType
		want     string
	}{
		{ProviderAnthropic, "ANTHROPIC_API_KEY"},
		{ProviderOpenAI, "OPENAI_API_KEY"},
		{ProviderOpenRouter, "OPENROUTER_API_KEY"},
		{ProviderGoogle, "GOOGLE_API_KEY"},
		{ProviderOllama, ""},
	}
	for _, tt := range tests {
		got := APIKeyEnvVar(tt.provider)
		if got != tt.want {
			t.Errorf("APIKeyEnvVar(%q) = %q, want %q", tt.provider, got, tt.want)
		}
	}
}

func TestValidatePositiveInt(t *testing.T) {
	if err := validatePositiveInt("1024"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, in := range []string{"", "abc", "0", "-3"} {
		if err := validatePositiveInt(in); err == nil {
			t.Errorf("validatePositiveInt(%q) expected error", in)
		}
	}
}
