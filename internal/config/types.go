package config

import "github.com/ziadkadry99/toolprobe/internal/llm"

// ProviderType identifies a hosted-model provider.
type ProviderType string

const (
	ProviderAnthropic  ProviderType = "anthropic"
	ProviderOpenAI     ProviderType = "openai"
	ProviderOpenRouter ProviderType = "openrouter"
	ProviderMiniMax    ProviderType = "minimax"
	ProviderGoogle     ProviderType = "google"
	ProviderOllama     ProviderType = "ollama"
)

// Config is the top-level toolprobe configuration, corresponding to .toolprobe.yml.
type Config struct {
	Provider       ProviderType `yaml:"provider" koanf:"provider"`
	Model          string       `yaml:"model" koanf:"model"`
	BaseURL        string       `yaml:"base_url,omitempty" koanf:"base_url"`
	MaxTokens      int          `yaml:"max_tokens" koanf:"max_tokens"`
	Temperature    *float64     `yaml:"temperature,omitempty" koanf:"temperature"`
	Prompt         string       `yaml:"prompt" koanf:"prompt"`
	System         string       `yaml:"system,omitempty" koanf:"system"`
	Tools          []llm.Tool   `yaml:"tools" koanf:"tools"`
	AnthropicBeta  []string     `yaml:"anthropic_beta,omitempty" koanf:"anthropic_beta"`
	TimeoutSeconds int          `yaml:"timeout_seconds" koanf:"timeout_seconds"`
	HistoryDB      string       `yaml:"history_db" koanf:"history_db"`
	ReportDir      string       `yaml:"report_dir" koanf:"report_dir"`
	Server         ServerConfig `yaml:"server" koanf:"server"`
	Notify         NotifyConfig `yaml:"notify,omitempty" koanf:"notify"`
}

// ServerConfig holds settings for the long-running `server` command.
type ServerConfig struct {
	Port int `yaml:"port" koanf:"port"`
	// Schedule is a standard cron expression (or @every descriptor) for
	// periodic smoke runs. Empty disables scheduling.
	Schedule string `yaml:"schedule,omitempty" koanf:"schedule"`
	AllowAll bool   `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// NotifyConfig lists webhooks that receive a JSON notification after each
// run whose severity (ok=info, empty=warning, error=critical) meets MinSeverity.
type NotifyConfig struct {
	Webhooks    []string `yaml:"webhooks,omitempty" koanf:"webhooks"`
	MinSeverity string   `yaml:"min_severity,omitempty" koanf:"min_severity"`
}
