package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/culprit/core"
	"github.com/huangsam/culprit/internal/adapters"
	"github.com/huangsam/culprit/internal/contract"
	"github.com/huangsam/culprit/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
}

// summaryResponse wraps an aggregate summary with correlation warnings.
type summaryResponse struct {
	Summary  *schema.Summary `json:"summary"`
	Warnings []string        `json:"warnings,omitempty"`
}

// rawResponse wraps per-defect records with correlation warnings.
type rawResponse struct {
	Records  []schema.AttributedRecord `json:"records"`
	Warnings []string                  `json:"warnings,omitempty"`
}

func (h *toolHandler) handleAttributeDefects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()

	cfg.Analyzers = []contract.AdapterInput{{
		Adapter: request.GetString("analyzer", ""),
		Files:   []string{request.GetString("analyzer_file", "")},
	}}

	// A tool call carries at most one blame input, none means unattributed mode
	cfg.Repos = nil
	repoName := request.GetString("repo", "")
	repoFile := request.GetString("repo_file", "")
	if repoName != "" || repoFile != "" {
		cfg.Repos = []contract.AdapterInput{{
			Adapter: repoName,
			Files:   []string{repoFile},
			Prefix:  request.GetString("prefix", ""),
		}}
	}

	if err := contract.RevalidateAttribution(cfg); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid attribution parameters: %v", err)), nil
	}

	if request.GetBool("rawdata", false) {
		records, warnings, err := core.GetAttributionRecords(ctx, cfg)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("attribution failed: %v", err)), nil
		}

		jsonData, _ := json.MarshalIndent(rawResponse{Records: records, Warnings: warnings}, "", "  ")
		return mcp.NewToolResultText(string(jsonData)), nil
	}

	summary, warnings, err := core.GetAttributionSummary(ctx, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("attribution failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(summaryResponse{Summary: summary, Warnings: warnings}, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListAdapters(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	type adapterInfo struct {
		Name  string `json:"name"`
		Kind  string `json:"kind"`
		Notes string `json:"notes"`
	}

	var infos []adapterInfo
	for _, analyzer := range adapters.Analyzers() {
		infos = append(infos, adapterInfo{Name: analyzer.Name(), Kind: "analyzer", Notes: analyzer.Notes()})
	}
	for _, repo := range adapters.Repos() {
		infos = append(infos, adapterInfo{Name: repo.Name(), Kind: "repo", Notes: repo.Notes()})
	}

	jsonData, _ := json.MarshalIndent(infos, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
