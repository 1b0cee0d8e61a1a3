package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ziadkadry99/toolprobe/internal/config"
	"github.com/ziadkadry99/toolprobe/internal/history"
	"github.com/ziadkadry99/toolprobe/internal/llm"
)

// mockProvider returns a canned response and records requests.
type mockProvider struct {
	mu    sync.Mutex
	calls []llm.CompletionRequest
	resp  *llm.CompletionResponse
	err   error
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

// memRecorder keeps recorded runs in memory.
type memRecorder struct {
	runs []history.Run
	err  error
}

func (m *memRecorder) Record(_ context.Context, run *history.Run) error {
	if m.err != nil {
		return m.err
	}
	run.ID = "rec-1"
	m.runs = append(m.runs, *run)
	return nil
}

func toolUseResponse() *llm.CompletionResponse {
	return &llm.CompletionResponse{
		Content: []llm.ContentBlock{
			{Type: llm.BlockText, Text: "I'll look for Python files."},
			{Type: llm.BlockToolUse, ID: "toolu_1", Name: "bash", Input: map[string]any{"command": "ls *.py"}},
		},
		InputTokens:  1000,
		OutputTokens: 100,
		Model:        "claude-sonnet-4-5-20250929",
		FinishReason: "tool_use",
	}
}

func TestRequestFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	r := NewRunner(&mockProvider{}, cfg)

	req := r.Request()
	if req.Model != cfg.Model {
		t.Errorf("model = %q, want %q", req.Model, cfg.Model)
	}
	if req.MaxTokens != 1024 {
		t.Errorf("max tokens = %d, want 1024", req.MaxTokens)
	}
	if len(req.Tools) != 1 || req.Tools[0].Type != "bash_20250124" || req.Tools[0].Name != "bash" {
		t.Errorf("tools = %+v", req.Tools)
	}
	if len(req.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(req.Messages))
	}
	if req.Messages[0].Role != llm.RoleUser || req.Messages[0].Content != config.DefaultPrompt {
		t.Errorf("message = %+v", req.Messages[0])
	}
}

func TestRequestWithSystemPrompt(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.System = "You are terse."
	req := NewRunner(&mockProvider{}, cfg).Request()
	if len(req.Messages) != 2 || req.Messages[0].Role != llm.RoleSystem {
		t.Errorf("messages = %+v", req.Messages)
	}
}

func TestRunSuccess(t *testing.T) {
	provider := &mockProvider{resp: toolUseResponse()}
	rec := &memRecorder{}
	var notified []history.Run

	r := NewRunner(provider, config.DefaultConfig(),
		WithRecorder(rec),
		WithNotify(func(run history.Run) { notified = append(notified, run) }),
	)

	res, err := r.Run(context.Background(), history.SourceCLI)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(provider.calls) != 1 {
		t.Errorf("expected exactly one call, got %d", len(provider.calls))
	}
	if res.Run.Status != history.StatusOK {
		t.Errorf("status = %q", res.Run.Status)
	}
	if res.Run.CostUSD <= 0 {
		t.Errorf("expected positive cost, got %f", res.Run.CostUSD)
	}
	if len(rec.runs) != 1 || rec.runs[0].Source != history.SourceCLI {
		t.Errorf("recorded = %+v", rec.runs)
	}
	if len(notified) != 1 || notified[0].ID != "rec-1" {
		t.Errorf("notified = %+v", notified)
	}
	if len(res.Response.ToolCalls()) != 1 {
		t.Errorf("expected one tool call")
	}
}

func TestRunProviderError(t *testing.T) {
	apiErr := &llm.APIError{Provider: "mock", StatusCode: 401, Message: "bad key"}
	rec := &memRecorder{}
	r := NewRunner(&mockProvider{err: apiErr}, config.DefaultConfig(), WithRecorder(rec))

	res, err := r.Run(context.Background(), history.SourceCLI)
	var target *llm.APIError
	if !errors.As(err, &target) {
		t.Fatalf("expected wrapped *llm.APIError, got %v", err)
	}
	if res.Run.Status != history.StatusError || res.Run.Error == "" {
		t.Errorf("run = %+v", res.Run)
	}
	if len(rec.runs) != 1 {
		t.Errorf("failed run should still be recorded")
	}
}

func TestRunEmptyResponse(t *testing.T) {
	provider := &mockProvider{resp: &llm.CompletionResponse{Model: "m"}}
	r := NewRunner(provider, config.DefaultConfig())

	res, err := r.Run(context.Background(), history.SourceSchedule)
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
	if res.Run.Status != history.StatusEmpty {
		t.Errorf("status = %q", res.Run.Status)
	}
}

func TestRunRecorderFailureDoesNotFailRun(t *testing.T) {
	provider := &mockProvider{resp: toolUseResponse()}
	r := NewRunner(provider, config.DefaultConfig(), WithRecorder(&memRecorder{err: errors.New("disk full")}))

	if _, err := r.Run(context.Background(), history.SourceCLI); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRunMeasuresDuration(t *testing.T) {
	provider := &mockProvider{resp: toolUseResponse()}
	r := NewRunner(provider, config.DefaultConfig())
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ticks := []time.Time{start, start.Add(2 * time.Second)}
	r.now = func() time.Time {
		next := ticks[0]
		ticks = ticks[1:]
		return next
	}

	res, err := r.Run(context.Background(), history.SourceCLI)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Run.Duration != 2*time.Second {
		t.Errorf("duration = %v", res.Run.Duration)
	}
}

func TestPricingModel(t *testing.T) {
	if got := pricingModel("gpt-4o", ""); got != "gpt-4o" {
		t.Errorf("got %q", got)
	}
	if got := pricingModel("my-alias", "claude-sonnet-4-5-20250929"); got != "claude-sonnet-4-5-20250929" {
		t.Errorf("got %q", got)
	}
	if got := pricingModel("gpt-4o", "unpriced-snapshot"); got != "gpt-4o" {
		t.Errorf("got %q", got)
	}
}

func TestPrintContentText(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintContent(&buf, toolUseResponse().Content, FormatText); err != nil {
		t.Fatalf("PrintContent: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "I'll look for Python files.") {
		t.Errorf("missing text block: %q", out)
	}
	if !strings.Contains(out, `[tool_use toolu_1] bash {"command":"ls *.py"}`) {
		t.Errorf("missing tool_use block: %q", out)
	}
}

func TestPrintContentJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintContent(&buf, toolUseResponse().Content, FormatJSON); err != nil {
		t.Fatalf("PrintContent: %v", err)
	}
	var blocks []llm.ContentBlock
	if err := json.Unmarshal(buf.Bytes(), &blocks); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(blocks) != 2 || blocks[1].Name != "bash" {
		t.Errorf("blocks = %+v", blocks)
	}
}

func TestPrintContentJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintContent(&buf, nil, FormatJSON); err != nil {
		t.Fatalf("PrintContent: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("got %q, want []", buf.String())
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
