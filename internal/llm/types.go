package llm

import "strings"

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    Role   `json:"role" yaml:"role" koanf:"role"`
	Content string `json:"content" yaml:"content" koanf:"content"`
}

// Tool declares a capability the model may invoke during generation.
// Type is the provider tool version tag (e.g. "bash_20250124").
type Tool struct {
	Type string `json:"type" yaml:"type" koanf:"type"`
	Name string `json:"name" yaml:"name" koanf:"name"`
}

// CompletionRequest contains the parameters for an LLM completion request.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	// Temperature is nil to leave sampling at the provider default.
	Temperature *float64
	JSONMode    bool
	Tools       []Tool
}

// Content block types returned by providers.
const (
	BlockText    = "text"
	BlockToolUse = "tool_use"
)

// ContentBlock is one element of a response's content list.
type ContentBlock struct {
	Type  string         `json:"type"`
	Text  string         `json:"text,omitempty"`
	ID    string         `json:"id,omitempty"`
	Name  string         `json:"name,omitempty"`
	Input map[string]any `json:"input,omitempty"`
}

// CompletionResponse contains the result of an LLM completion request.
type CompletionResponse struct {
	Content      []ContentBlock
	InputTokens  int
	OutputTokens int
	Model        string
	FinishReason string
}

// Text concatenates the text blocks of the response.
func (r *CompletionResponse) Text() string {
	var b strings.Builder
	for _, block := range r.Content {
		if block.Type == BlockText {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

// ToolCalls returns the tool_use blocks of the response.
func (r *CompletionResponse) ToolCalls() []ContentBlock {
	var calls []ContentBlock
	for _, block := range r.Content {
		if block.Type == BlockToolUse {
			calls = append(calls, block)
		}
	}
	return calls
}

// IsEmpty reports whether the response carries no usable content.
func (r *CompletionResponse) IsEmpty() bool {
	for _, block := range r.Content {
		switch block.Type {
		case BlockText:
			if strings.TrimSpace(block.Text) != "" {
				return false
			}
		case BlockToolUse:
			return false
		}
	}
	return true
}
