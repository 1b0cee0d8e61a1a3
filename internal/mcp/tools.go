package mcp

import "github.com/mark3labs/mcp-go/mcp"

// runSmokeTestTool defines the run_smoke_test MCP tool.
var runSmokeTestTool = mcp.NewTool("run_smoke_test",
	mcp.WithDescription("Send the configured tool-declaring prompt to the configured model once and return the response content."),
	mcp.WithString("format",
		mcp.Description("How to render the response content (default text)"),
		mcp.Enum("text", "json"),
	),
)

// listRunsTool defines the list_runs MCP tool.
var listRunsTool = mcp.NewTool("list_runs",
	mcp.WithDescription("List recent smoke runs, newest first, with an outcome summary."),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of runs to return (default 10)"),
	),
	mcp.WithString("status",
		mcp.Description("Only return runs with this outcome"),
		mcp.Enum("ok", "empty", "error"),
	),
)

// getRunTool defines the get_run MCP tool.
var getRunTool = mcp.NewTool("get_run",
	mcp.WithDescription("Get one recorded smoke run including its full response content."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Run ID as returned by list_runs"),
	),
)
