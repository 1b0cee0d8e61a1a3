package llm

import (
	"fmt"
	"net/http"
	"os"
	"time"
)

// Options carries the transport settings shared by all providers.
type Options struct {
	// BaseURL overrides the provider endpoint (gateway, proxy or self-hosted).
	BaseURL string
	// AnthropicBeta lists values sent in the anthropic-beta header.
	AnthropicBeta []string
	// Timeout bounds a single request. Zero means no client-side limit.
	Timeout time.Duration
}

func (o Options) httpClient() *http.Client {
	return &http.Client{Timeout: o.Timeout}
}

// NewProvider creates a new LLM provider based on the given provider type and model.
// Supported provider types: "anthropic", "openai", "openrouter", "minimax", "google", "ollama".
func NewProvider(providerType string, model string, opts Options) (Provider, error) {
	switch providerType {
	case "anthropic":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
		}
		return NewAnthropicProvider(apiKey, model, opts.BaseURL, opts.AnthropicBeta, opts.httpClient()), nil

	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		return NewOpenAIProvider(apiKey, model, opts.BaseURL, opts.httpClient()), nil

	case "openrouter":
		apiKey := os.Getenv("OPENROUTER_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENROUTER_API_KEY environment variable is not set")
		}
		return NewOpenRouterProvider(apiKey, model, opts.httpClient()), nil

	case "minimax":
		apiKey := os.Getenv("MINIMAX_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("MINIMAX_API_KEY environment variable is not set")
		}
		return NewMinimaxProvider(apiKey, model, opts.httpClient()), nil

	case "google":
		apiKey := os.Getenv("GOOGLE_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("GOOGLE_API_KEY environment variable is not set")
		}
		p, err := NewGoogleProvider(apiKey, model, opts.BaseURL, opts.httpClient())
		if err != nil {
			return nil, err
		}
		return p, nil

	case "ollama":
		host := opts.BaseURL
		if host == "" {
			host = os.Getenv("OLLAMA_HOST")
		}
		return NewOllamaProvider(host, model, opts.httpClient()), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}
