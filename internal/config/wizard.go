package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/ziadkadry99/toolprobe/internal/llm"
)

// RunWizard runs an interactive configuration wizard and saves the
// resulting Config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to toolprobe! Let's configure your smoke test.")
	fmt.Println()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select model provider",
		Items: Providers(),
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	provider := ProviderType(providerStr)

	// 2. Model.
	modelPrompt := promptui.Prompt{
		Label:   "Model identifier",
		Default: DefaultModel(provider),
	}
	model, err := modelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	// 3. Token limit.
	tokensPrompt := promptui.Prompt{
		Label:    "Max output tokens",
		Default:  "1024",
		Validate: validatePositiveInt,
	}
	tokensStr, err := tokensPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("max tokens: %w", err)
	}
	maxTokens, _ := strconv.Atoi(strings.TrimSpace(tokensStr))

	// 4. Prompt.
	messagePrompt := promptui.Prompt{
		Label:   "User message",
		Default: DefaultPrompt,
	}
	message, err := messagePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("user message: %w", err)
	}

	// 5. Tool declaration.
	toolPrompt := promptui.Select{
		Label: "Declare the bash tool",
		Items: []string{"yes", "no"},
	}
	toolIdx, _, err := toolPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("tool selection: %w", err)
	}

	cfg := DefaultConfig()
	cfg.Provider = provider
	cfg.Model = strings.TrimSpace(model)
	cfg.MaxTokens = maxTokens
	cfg.Prompt = message
	if toolIdx == 0 {
		cfg.Tools = []llm.Tool{llm.BashTool()}
	} else {
		cfg.Tools = nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Check for API key.
	envVar := APIKeyEnvVar(provider)
	if envVar != "" {
		if os.Getenv(envVar) == "" {
			fmt.Printf("\nNote: Set %s in your environment or .env file before running toolprobe.\n", envVar)
		}
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if n <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}
