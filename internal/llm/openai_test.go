package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAISendsFunctionToolAndParsesToolCalls(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o",
			"choices": [{
				"index": 0,
				"finish_reason": "tool_calls",
				"message": {
					"role": "assistant",
					"content": "",
					"tool_calls": [{
						"id": "call_1",
						"type": "function",
						"function": {"name": "bash", "arguments": "{\"command\":\"ls *.py\"}"}
					}]
				}
			}],
			"usage": {"prompt_tokens": 20, "completion_tokens": 8, "total_tokens": 28}
		}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("test-key", "gpt-4o", srv.URL, srv.Client())
	resp, err := p.Complete(context.Background(), CompletionRequest{
		MaxTokens: 1024,
		Tools:     []Tool{BashTool()},
		Messages:  []Message{{Role: RoleUser, Content: "list"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tools, ok := got["tools"].([]any)
	if !ok || len(tools) != 1 {
		t.Fatalf("tools = %v", got["tools"])
	}
	fn := tools[0].(map[string]any)["function"].(map[string]any)
	if fn["name"] != "bash" {
		t.Errorf("function name = %v", fn["name"])
	}

	calls := resp.ToolCalls()
	if len(calls) != 1 || calls[0].ID != "call_1" || calls[0].Input["command"] != "ls *.py" {
		t.Errorf("tool calls = %+v", calls)
	}
	if resp.FinishReason != "tool_calls" {
		t.Errorf("finish reason = %q", resp.FinishReason)
	}
	if resp.InputTokens != 20 || resp.OutputTokens != 8 {
		t.Errorf("usage = %d/%d", resp.InputTokens, resp.OutputTokens)
	}
}

func TestOpenAIAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("bad", "gpt-4o", srv.URL, srv.Client())
	_, err := p.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
	if apiErr.Provider != "openai" {
		t.Errorf("provider = %q", apiErr.Provider)
	}
}

func TestDecodeArguments(t *testing.T) {
	if got := decodeArguments(""); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
	if got := decodeArguments("not json"); got["raw"] != "not json" {
		t.Errorf("expected raw fallback, got %v", got)
	}
}

func TestMinimaxTemperature(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	tests := []struct {
		name string
		in   *float64
		want float32
	}{
		{"unset", nil, 0.01},
		{"zero", f(0), 0.01},
		{"in range", f(0.7), 0.7},
		{"above one", f(1.5), 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := minimaxTemperature(tt.in); got != tt.want {
				t.Errorf("minimaxTemperature = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMinimaxClampsRequestTemperature(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model":"m","choices":[{"message":{"role":"assistant","content":"ok"},"finish_reason":"stop"}],"usage":{}}`))
	}))
	defer srv.Close()

	temp := 1.5
	p := newOpenAICompatible("minimax", "k", "m", srv.URL, srv.Client())
	_, err := p.Complete(context.Background(), CompletionRequest{
		Temperature: &temp,
		Messages:    []Message{{Role: RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["temperature"] != float64(1) {
		t.Errorf("temperature = %v, want 1", got["temperature"])
	}
}
