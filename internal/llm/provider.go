package llm

import "context"

// Provider defines the interface for hosted-model providers.
type Provider interface {
	// Complete sends a single completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}
