package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/toolprobe/internal/db"
	"github.com/ziadkadry99/toolprobe/internal/history"
	"github.com/ziadkadry99/toolprobe/internal/llm"
	"github.com/ziadkadry99/toolprobe/internal/smoke"
)

// mockRunner implements Runner for testing.
type mockRunner struct {
	content []llm.ContentBlock
	err     error
	source  history.Source
}

func (m *mockRunner) Run(_ context.Context, source history.Source) (*smoke.Result, error) {
	m.source = source
	return &smoke.Result{Run: history.Run{Source: source, Content: m.content}}, m.err
}

func newStore(t *testing.T) *history.Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return history.NewStore(database)
}

// extractText gets the text content from a CallToolResult.
func extractText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
	}{
		{"run_smoke_test", runSmokeTestTool, "run_smoke_test"},
		{"list_runs", listRunsTool, "list_runs"},
		{"get_run", getRunTool, "get_run"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	runner := &mockRunner{}
	store := newStore(t)
	srv := NewServer(runner, store)

	if srv == nil {
		t.Fatal("NewServer returned nil")
	}
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
	if srv.store != store {
		t.Error("store not set correctly")
	}
}

func TestHandleRunSmokeTest(t *testing.T) {
	ctx := context.Background()
	content := []llm.ContentBlock{
		{Type: llm.BlockText, Text: "I'll list the files."},
		{Type: llm.BlockToolUse, ID: "toolu_1", Name: "bash", Input: map[string]any{"command": "ls *.py"}},
	}

	t.Run("text", func(t *testing.T) {
		runner := &mockRunner{content: content}
		srv := NewServer(runner, nil)

		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := srv.handleRunSmokeTest(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		text := extractText(result)
		if !strings.Contains(text, "I'll list the files.") || !strings.Contains(text, "[tool_use toolu_1] bash") {
			t.Errorf("unexpected text: %q", text)
		}
		if runner.source != history.SourceMCP {
			t.Errorf("source = %q, want %q", runner.source, history.SourceMCP)
		}
	})

	t.Run("json", func(t *testing.T) {
		srv := NewServer(&mockRunner{content: content}, nil)

		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"format": "json"}

		result, err := srv.handleRunSmokeTest(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(extractText(result), `"type": "tool_use"`) {
			t.Errorf("expected JSON content, got %q", extractText(result))
		}
	})

	t.Run("bad format", func(t *testing.T) {
		srv := NewServer(&mockRunner{}, nil)

		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"format": "xml"}

		result, _ := srv.handleRunSmokeTest(ctx, req)
		if !result.IsError {
			t.Error("expected error for unknown format")
		}
	})

	t.Run("provider failure", func(t *testing.T) {
		srv := NewServer(&mockRunner{err: errors.New("401 unauthorized")}, nil)

		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := srv.handleRunSmokeTest(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Fatal("expected tool error")
		}
		if !strings.Contains(extractText(result), "401 unauthorized") {
			t.Errorf("unexpected text: %q", extractText(result))
		}
	})
}

func TestHandleListRuns(t *testing.T) {
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		srv := NewServer(&mockRunner{}, newStore(t))

		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := srv.handleListRuns(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		if !strings.Contains(extractText(result), "No runs recorded") {
			t.Errorf("unexpected text: %q", extractText(result))
		}
	})

	t.Run("filter by status", func(t *testing.T) {
		store := newStore(t)
		mustRecord(t, store, &history.Run{ID: "ok-run", Source: history.SourceCLI, Provider: "anthropic", Model: "m", Status: history.StatusOK})
		mustRecord(t, store, &history.Run{ID: "bad-run", Source: history.SourceMCP, Provider: "anthropic", Model: "m", Status: history.StatusError, Error: "boom"})
		srv := NewServer(&mockRunner{}, store)

		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"status": "error", "limit": float64(5)}

		result, err := srv.handleListRuns(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		text := extractText(result)
		if !strings.Contains(text, "bad-run") || strings.Contains(text, "ok-run") {
			t.Errorf("unexpected text: %q", text)
		}
		if !strings.Contains(text, "2 run(s) recorded: 1 ok, 0 empty, 1 error") {
			t.Errorf("missing summary: %q", text)
		}
	})

	t.Run("history disabled", func(t *testing.T) {
		srv := NewServer(&mockRunner{}, nil)

		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, _ := srv.handleListRuns(ctx, req)
		if !result.IsError {
			t.Error("expected error without a store")
		}
	})
}

func TestHandleGetRun(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	mustRecord(t, store, &history.Run{
		ID:       "run-1",
		Source:   history.SourceCLI,
		Provider: "anthropic",
		Model:    "m",
		Status:   history.StatusOK,
		Content:  []llm.ContentBlock{{Type: llm.BlockText, Text: "main.py"}},
	})
	srv := NewServer(&mockRunner{}, store)

	t.Run("found", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"id": "run-1"}

		result, err := srv.handleGetRun(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		text := extractText(result)
		if !strings.Contains(text, "ID: run-1") || !strings.Contains(text, "main.py") {
			t.Errorf("unexpected text: %q", text)
		}
	})

	t.Run("not found", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"id": "nope"}

		result, _ := srv.handleGetRun(ctx, req)
		if !result.IsError {
			t.Error("expected error for unknown id")
		}
	})

	t.Run("missing id", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, _ := srv.handleGetRun(ctx, req)
		if !result.IsError {
			t.Error("expected error for missing id")
		}
	})
}

func mustRecord(t *testing.T, store *history.Store, run *history.Run) {
	t.Helper()
	if err := store.Record(context.Background(), run); err != nil {
		t.Fatalf("Record %s: %v", run.ID, err)
	}
}
