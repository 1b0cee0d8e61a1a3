package config

import "github.com/ziadkadry99/toolprobe/internal/llm"

// DefaultPrompt is the user message sent by a smoke run.
const DefaultPrompt = "List all Python files in the current directory."

// defaultModels maps each provider to the model used when none is configured.
var defaultModels = map[ProviderType]string{
	ProviderAnthropic:  "claude-sonnet-4-5-20250929",
	ProviderOpenAI:     "gpt-4o",
	ProviderOpenRouter: "openai/gpt-4o",
	ProviderMiniMax:    "MiniMax-M2.5",
	ProviderGoogle:     "gemini-2.0-flash",
	ProviderOllama:     "llama3.1",
}

// DefaultModel returns the default model for the given provider.
// Returns the Anthropic default if the provider is unknown.
func DefaultModel(provider ProviderType) string {
	if m, ok := defaultModels[provider]; ok {
		return m
	}
	return defaultModels[ProviderAnthropic]
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:       ProviderAnthropic,
		Model:          defaultModels[ProviderAnthropic],
		MaxTokens:      1024,
		Prompt:         DefaultPrompt,
		Tools:          []llm.Tool{llm.BashTool()},
		TimeoutSeconds: 120,
		HistoryDB:      ".toolprobe/history.db",
		ReportDir:      ".toolprobe/report",
		Server: ServerConfig{
			Port: 8080,
		},
	}
}
