package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/toolprobe/internal/history"
	"github.com/ziadkadry99/toolprobe/internal/smoke"
)

// handleRunSmokeTest performs one smoke run and returns the response content.
func (s *Server) handleRunSmokeTest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	format, err := smoke.ParseFormat(request.GetString("format", "text"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.runner.Run(ctx, history.SourceMCP)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("smoke run failed: %v", err)), nil
	}

	var sb strings.Builder
	if err := smoke.PrintContent(&sb, res.Run.Content, format); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("rendering content: %v", err)), nil
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleListRuns returns recent runs from the history store.
func (s *Server) handleListRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.store == nil {
		return mcp.NewToolResultError("run history is disabled"), nil
	}

	limit := request.GetInt("limit", 10)
	if limit <= 0 {
		limit = 10
	}

	runs, err := s.store.List(ctx, history.Filter{
		Status: history.Status(request.GetString("status", "")),
		Limit:  limit,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing runs failed: %v", err)), nil
	}
	sum, err := s.store.Summarize(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("summarizing runs failed: %v", err)), nil
	}

	if len(runs) == 0 {
		return mcp.NewToolResultText("No runs recorded yet. Call run_smoke_test to record one."), nil
	}

	return mcp.NewToolResultText(formatRuns(runs, sum)), nil
}

// handleGetRun returns one run with its content.
func (s *Server) handleGetRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}
	if s.store == nil {
		return mcp.NewToolResultError("run history is disabled"), nil
	}

	run, err := s.store.Get(ctx, id)
	if errors.Is(err, history.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("No run found with id %q.", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read run: %v", err)), nil
	}

	var sb strings.Builder
	writeRunHeader(&sb, *run)
	sb.WriteString("\n")
	if err := smoke.PrintContent(&sb, run.Content, smoke.FormatText); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("rendering content: %v", err)), nil
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// formatRuns renders runs as plain text for agent consumption.
func formatRuns(runs []history.Run, sum *history.Summary) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d run(s) recorded: %d ok, %d empty, %d error, $%.6f total\n",
		sum.Total, sum.OK, sum.Empty, sum.Errors, sum.TotalCostUSD))

	for i, run := range runs {
		sb.WriteString(fmt.Sprintf("\n--- Run %d ---\n", i+1))
		writeRunHeader(&sb, run)
	}
	return sb.String()
}

func writeRunHeader(sb *strings.Builder, run history.Run) {
	sb.WriteString(fmt.Sprintf("ID: %s\n", run.ID))
	sb.WriteString(fmt.Sprintf("Started: %s (%s)\n", run.StartedAt.Format(time.RFC3339), run.Duration.Round(time.Millisecond)))
	sb.WriteString(fmt.Sprintf("Source: %s\n", run.Source))
	sb.WriteString(fmt.Sprintf("Provider: %s\n", run.Provider))
	sb.WriteString(fmt.Sprintf("Model: %s\n", run.Model))
	sb.WriteString(fmt.Sprintf("Status: %s\n", run.Status))
	if run.Error != "" {
		sb.WriteString(fmt.Sprintf("Error: %s\n", run.Error))
	}
	sb.WriteString(fmt.Sprintf("Tokens: %d in / %d out\n", run.InputTokens, run.OutputTokens))
	sb.WriteString(fmt.Sprintf("Cost: $%.6f\n", run.CostUSD))
}
