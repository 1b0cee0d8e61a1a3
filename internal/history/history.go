package history

import (
	"time"

	"github.com/ziadkadry99/toolprobe/internal/llm"
)

// Source identifies what started a smoke run.
type Source string

const (
	SourceCLI      Source = "cli"
	SourceServer   Source = "server"
	SourceSchedule Source = "schedule"
	SourceMCP      Source = "mcp"
)

// Valid reports whether s is one of the known run sources.
func (s Source) Valid() bool {
	switch s {
	case SourceCLI, SourceServer, SourceSchedule, SourceMCP:
		return true
	}
	return false
}

// Status is the outcome of a smoke run.
type Status string

const (
	StatusOK    Status = "ok"
	StatusEmpty Status = "empty"
	StatusError Status = "error"
)

// Run is a single recorded smoke run.
type Run struct {
	ID            string             `json:"id"`
	StartedAt     time.Time          `json:"started_at"`
	Duration      time.Duration      `json:"duration_ns"`
	Source        Source             `json:"source"`
	Provider      string             `json:"provider"`
	Model         string             `json:"model"`
	ResponseModel string             `json:"response_model,omitempty"`
	Prompt        string             `json:"prompt"`
	Tools         []llm.Tool         `json:"tools"`
	Status        Status             `json:"status"`
	Error         string             `json:"error,omitempty"`
	Content       []llm.ContentBlock `json:"content"`
	FinishReason  string             `json:"finish_reason,omitempty"`
	InputTokens   int                `json:"input_tokens"`
	OutputTokens  int                `json:"output_tokens"`
	CostUSD       float64            `json:"cost_usd"`
}

// Summary aggregates outcomes across all recorded runs.
type Summary struct {
	Total        int     `json:"total"`
	OK           int     `json:"ok"`
	Empty        int     `json:"empty"`
	Errors       int     `json:"errors"`
	TotalCostUSD float64 `json:"total_cost_usd"`
}
