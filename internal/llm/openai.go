package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const (
	openRouterBaseURL = "https://openrouter.ai/api/v1"
	minimaxBaseURL    = "https://api.minimax.io/v1"
)

// OpenAIProvider implements Provider using the OpenAI Chat Completions API.
// OpenAI-compatible services (OpenRouter, MiniMax) reuse it with another base URL.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	name   string
}

// NewOpenAIProvider creates a new OpenAI provider. baseURL may be empty.
func NewOpenAIProvider(apiKey, model, baseURL string, httpClient *http.Client) *OpenAIProvider {
	return newOpenAICompatible("openai", apiKey, model, baseURL, httpClient)
}

// NewOpenRouterProvider creates a provider for the OpenRouter API (OpenAI-compatible).
func NewOpenRouterProvider(apiKey, model string, httpClient *http.Client) *OpenAIProvider {
	return newOpenAICompatible("openrouter", apiKey, model, openRouterBaseURL, httpClient)
}

// NewMinimaxProvider creates a provider for the MiniMax API (OpenAI-compatible).
func NewMinimaxProvider(apiKey, model string, httpClient *http.Client) *OpenAIProvider {
	return newOpenAICompatible("minimax", apiKey, model, minimaxBaseURL, httpClient)
}

func newOpenAICompatible(name, apiKey, model, baseURL string, httpClient *http.Client) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		name:   name,
	}
}

func (p *OpenAIProvider) Name() string {
	return p.name
}

func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	var messages []openai.ChatCompletionMessage
	for _, msg := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	apiReq := openai.ChatCompletionRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: maxTokens,
		Tools:     toOpenAITools(req.Tools),
	}
	if req.Temperature != nil {
		apiReq.Temperature = float32(*req.Temperature)
	}
	if p.name == "minimax" {
		apiReq.Temperature = minimaxTemperature(req.Temperature)
	}

	if req.JSONMode {
		apiReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, &APIError{
				Provider:   p.name,
				StatusCode: apiErr.HTTPStatusCode,
				Type:       apiErr.Type,
				Message:    apiErr.Message,
			}
		}
		return nil, fmt.Errorf("%s request failed: %w", p.name, err)
	}

	out := &CompletionResponse{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		Model:        resp.Model,
	}
	if len(resp.Choices) == 0 {
		return out, nil
	}

	choice := resp.Choices[0]
	out.FinishReason = string(choice.FinishReason)
	if choice.Message.Content != "" {
		out.Content = append(out.Content, ContentBlock{Type: BlockText, Text: choice.Message.Content})
	}
	for _, call := range choice.Message.ToolCalls {
		out.Content = append(out.Content, ContentBlock{
			Type:  BlockToolUse,
			ID:    call.ID,
			Name:  call.Function.Name,
			Input: decodeArguments(call.Function.Arguments),
		})
	}
	return out, nil
}

func toOpenAITools(tools []Tool) []openai.Tool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		spec := FunctionSpecFor(t)
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  spec.Parameters,
			},
		})
	}
	return out
}

// decodeArguments parses a JSON argument string. Unparseable input is kept
// under the "raw" key so it still reaches the output.
func decodeArguments(raw string) map[string]any {
	if raw == "" {
		return nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return map[string]any{"raw": raw}
	}
	return args
}

// minimaxTemperature maps a requested temperature into the (0, 1] range
// MiniMax accepts. Unset or non-positive values become 0.01.
func minimaxTemperature(t *float64) float32 {
	if t == nil || *t <= 0 {
		return 0.01
	}
	if *t > 1.0 {
		return 1.0
	}
	return float32(*t)
}
