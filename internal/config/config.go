package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/robfig/cron/v3"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/toolprobe/internal/llm"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "TOOLPROBE_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (TOOLPROBE_*). Nested keys use a double
// underscore: TOOLPROBE_SERVER__PORT -> server.port.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	// Lists from the file replace the defaults instead of merging into them.
	if k.Exists("tools") {
		cfg.Tools = nil
	}
	if k.Exists("anthropic_beta") {
		cfg.AnthropicBeta = nil
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// A provider switch without an explicit model picks that provider's default.
	if k.Exists("provider") && !k.Exists("model") {
		cfg.Model = DefaultModel(cfg.Provider)
	}

	return cfg, nil
}

// LoadEnvFile loads credentials from a dotenv file into the process
// environment. Variables already set are left untouched, and a missing file
// is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validProviders is the set of recognized provider values.
var validProviders = map[ProviderType]bool{
	ProviderAnthropic:  true,
	ProviderOpenAI:     true,
	ProviderOpenRouter: true,
	ProviderMiniMax:    true,
	ProviderGoogle:     true,
	ProviderOllama:     true,
}

// Providers returns the recognized provider names in display order.
func Providers() []string {
	return []string{
		string(ProviderAnthropic),
		string(ProviderOpenAI),
		string(ProviderOpenRouter),
		string(ProviderMiniMax),
		string(ProviderGoogle),
		string(ProviderOllama),
	}
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if !validProviders[c.Provider] {
		return fmt.Errorf("invalid provider %q: must be one of %s", c.Provider, strings.Join(Providers(), ", "))
	}

	if c.Model == "" {
		return fmt.Errorf("model is required")
	}

	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive")
	}

	if c.Temperature != nil && (*c.Temperature < 0 || *c.Temperature > 2) {
		return fmt.Errorf("temperature must be between 0 and 2, got %g", *c.Temperature)
	}

	if strings.TrimSpace(c.Prompt) == "" {
		return fmt.Errorf("prompt is required")
	}

	for i, t := range c.Tools {
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("tools[%d]: name is required", i)
		}
	}

	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must be non-negative")
	}

	if c.Server.Schedule != "" {
		if _, err := cron.ParseStandard(c.Server.Schedule); err != nil {
			return fmt.Errorf("invalid server.schedule %q: %w", c.Server.Schedule, err)
		}
	}

	switch c.Notify.MinSeverity {
	case "", "info", "warning", "critical":
	default:
		return fmt.Errorf("invalid notify.min_severity %q: must be info, warning or critical", c.Notify.MinSeverity)
	}
	for i, u := range c.Notify.Webhooks {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return fmt.Errorf("notify.webhooks[%d]: %q is not an http(s) URL", i, u)
		}
	}

	return nil
}

// Timeout returns the per-request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ProviderOptions returns the transport options for llm.NewProvider.
func (c *Config) ProviderOptions() llm.Options {
	return llm.Options{
		BaseURL:       c.BaseURL,
		AnthropicBeta: c.AnthropicBeta,
		Timeout:       c.Timeout(),
	}
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderOpenRouter:
		return "OPENROUTER_API_KEY"
	case ProviderMiniMax:
		return "MINIMAX_API_KEY"
	case ProviderGoogle:
		return "GOOGLE_API_KEY"
	default:
		return ""
	}
}
