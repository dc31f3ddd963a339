// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/culprit/internal/adapters"
	"github.com/huangsam/culprit/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the Culprit MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config) *server.MCPServer {
	s := server.NewMCPServer(
		"Culprit Attribution Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
	}

	// --- 1. Tool: attribute_defects ---
	s.AddTool(mcp.NewTool("attribute_defects",
		mcp.WithDescription("Correlate a static-analysis report with VCS blame output and attribute each defect to an author."),
		mcp.WithString("analyzer", mcp.Description("Analyzer adapter that produced the report."), mcp.Required(), mcp.Enum(adapters.AnalyzerNames()...)),
		mcp.WithString("analyzer_file", mcp.Description("Path to the analyzer report file."), mcp.Required()),
		mcp.WithString("repo", mcp.Description("Repo adapter that produced the blame output. Omit to leave every defect unattributed."), mcp.Enum(adapters.RepoNames()...)),
		mcp.WithString("repo_file", mcp.Description("Path to the blame output file.")),
		mcp.WithString("prefix", mcp.Description("Path prefix stripped from blame paths before matching.")),
		mcp.WithBoolean("rawdata", mcp.Description("Return per-defect records instead of the aggregate summary.")),
	), h.handleAttributeDefects)

	// --- 2. Tool: list_adapters ---
	s.AddTool(mcp.NewTool("list_adapters",
		mcp.WithDescription("List the registered analyzer and repo adapters with their input format notes."),
	), h.handleListAdapters)

	return s
}

// StartMCPServer starts the Culprit MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config) error {
	s := NewMCPServer(baseCfg)
	return server.ServeStdio(s)
}
