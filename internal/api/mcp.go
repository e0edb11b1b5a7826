package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Joszi2006/pillinfo/internal/conversation"
	"github.com/Joszi2006/pillinfo/internal/lookup"
)

// MCPResolver abstracts the text lookup for the MCP layer.
type MCPResolver interface {
	ResolveByText(ctx context.Context, text string, opts lookup.TextOptions) lookup.Result
}

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Resolver MCPResolver
	History  *conversation.MatchHistory
}

// NewMCPServer creates an MCP server exposing medication lookup to local
// assistants.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"pillinfo",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("pillinfo: medication lookup by free-text description."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("lookup_medication",
			mcp.WithDescription("Look up a medication by free-text description and return the structured match envelope."),
			mcp.WithString("text", mcp.Description("Free text naming the medication, e.g. \"Tylenol 200MG Oral Tablet\""), mcp.Required()),
			mcp.WithBoolean("all_drugs", mcp.Description("Return every detected drug, not just the first")),
		),
		mcpLookupMedication(deps),
	)

	s.AddTool(
		mcp.NewTool("recent_matches",
			mcp.WithDescription("List the most recent exact matches resolved in this process."),
		),
		mcpRecentMatches(deps),
	)

	return s
}

func mcpLookupMedication(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := req.RequireString("text")
		if err != nil {
			return mcpError("text is required"), nil
		}

		opts := lookup.DefaultTextOptions()
		opts.LookupAllDrugs = req.GetBool("all_drugs", false)

		res := deps.Resolver.ResolveByText(ctx, text, opts)
		if deps.History != nil {
			deps.History.Record(res, 0)
		}

		body, err := json.Marshal(res)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to encode result: %v", err)), nil
		}
		return mcpText(string(body)), nil
	}
}

func mcpRecentMatches(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if deps.History == nil {
			return mcpText("[]"), nil
		}
		body, err := json.Marshal(deps.History.Recent())
		if err != nil {
			return mcpError(fmt.Sprintf("failed to encode history: %v", err)), nil
		}
		return mcpText(string(body)), nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
