// Package core has core logic for indexing, correlation and aggregation.
package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/culprit/internal/adapters"
	"github.com/huangsam/culprit/internal/contract"
	"github.com/huangsam/culprit/internal/outwriter"
	"github.com/huangsam/culprit/schema"
)

// ExecuteAttribution runs the attribute command end to end. Every input
// file is opened before any parsing starts, so a missing file fails the
// run up front instead of after partial output.
func ExecuteAttribution(_ context.Context, cfg *contract.Config, store contract.HistoryStore) error {
	start := time.Now()
	contract.LogRunHeader(cfg)

	// --- 1. Open every input up front ---
	inputs, err := openInputs(cfg)
	if err != nil {
		return err
	}
	defer inputs.Close()

	// --- 2. Merge blame sources into per-kind indexes ---
	indexes, err := BuildIndexes(inputs.blames, cfg.Aliases)
	if err != nil {
		return err
	}

	// --- 3. Correlate lazily and write the requested output ---
	correlation := Correlate(inputs.defects, indexes)
	if cfg.Rawdata {
		err = outwriter.WriteRawRecords(correlation, cfg)
	} else {
		var summary *schema.Summary
		summary, err = Aggregate(correlation, cfg)
		if err == nil {
			err = outwriter.WriteSummaryResults(summary, cfg, time.Since(start))
			recordRun(store, summary)
		}
	}
	if err != nil {
		return err
	}

	// --- 4. Report unattributable defects after the output ---
	for _, warning := range correlation.Warnings() {
		contract.LogWarn("No one to blame", warning)
	}
	return nil
}

// GetAttributionSummary runs the pipeline and returns the aggregate
// summary plus any correlation warnings, without writing output. This
// serves callers like the MCP server that render results themselves.
func GetAttributionSummary(_ context.Context, cfg *contract.Config) (*schema.Summary, []string, error) {
	inputs, err := openInputs(cfg)
	if err != nil {
		return nil, nil, err
	}
	defer inputs.Close()

	indexes, err := BuildIndexes(inputs.blames, cfg.Aliases)
	if err != nil {
		return nil, nil, err
	}

	correlation := Correlate(inputs.defects, indexes)
	summary, err := Aggregate(correlation, cfg)
	if err != nil {
		return nil, nil, err
	}
	return summary, warningStrings(correlation.Warnings()), nil
}

// GetAttributionRecords runs the pipeline and returns every correlated
// record, for callers that want raw rows instead of a summary.
func GetAttributionRecords(_ context.Context, cfg *contract.Config) ([]schema.AttributedRecord, []string, error) {
	inputs, err := openInputs(cfg)
	if err != nil {
		return nil, nil, err
	}
	defer inputs.Close()

	indexes, err := BuildIndexes(inputs.blames, cfg.Aliases)
	if err != nil {
		return nil, nil, err
	}

	correlation := Correlate(inputs.defects, indexes)
	var records []schema.AttributedRecord
	for {
		rec, err := correlation.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		records = append(records, rec)
	}
	return records, warningStrings(correlation.Warnings()), nil
}

// warningStrings renders warnings in the same form LogWarn prints them,
// for the []string side channel the MCP callers expect.
func warningStrings(warnings []Warning) []string {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]string, len(warnings))
	for i, warning := range warnings {
		out[i] = warning.Error()
	}
	return out
}

// runInputs keeps every opened source plus the raw handles so an
// aborted run can release files the sources never drained.
type runInputs struct {
	defects []DefectInput
	blames  []BlameInput
	handles []io.Closer
}

// Close releases all input handles. Sources close their own handle when
// drained, a second close on those is harmless.
func (ri *runInputs) Close() {
	for _, handle := range ri.handles {
		_ = handle.Close()
	}
}

// openInputs opens all configured analyzer and repo files and wraps
// them in their adapters. A single failure closes whatever was already
// opened and fails the run.
func openInputs(cfg *contract.Config) (*runInputs, error) {
	ri := &runInputs{}
	for _, input := range cfg.Analyzers {
		analyzer, ok := adapters.AnalyzerByName(input.Adapter)
		if !ok {
			ri.Close()
			return nil, fmt.Errorf("unknown analyzer adapter %q", input.Adapter)
		}
		for _, path := range input.Files {
			file, err := os.Open(path)
			if err != nil {
				ri.Close()
				return nil, fmt.Errorf("open %s input: %w", input.Adapter, err)
			}
			ri.handles = append(ri.handles, file)
			ri.defects = append(ri.defects, DefectInput{Source: analyzer.Read(file, path), Prefix: input.Prefix})
		}
	}
	for _, input := range cfg.Repos {
		repo, ok := adapters.RepoByName(input.Adapter)
		if !ok {
			ri.Close()
			return nil, fmt.Errorf("unknown repo adapter %q", input.Adapter)
		}
		for _, path := range input.Files {
			file, err := os.Open(path)
			if err != nil {
				ri.Close()
				return nil, fmt.Errorf("open %s input: %w", input.Adapter, err)
			}
			ri.handles = append(ri.handles, file)
			ri.blames = append(ri.blames, BlameInput{Source: repo.Read(file, path), Prefix: input.Prefix})
		}
	}
	return ri, nil
}

// recordRun persists the run summary when a history store is wired in.
// Failures only warn, the attribution output already succeeded.
func recordRun(store contract.HistoryStore, summary *schema.Summary) {
	if store == nil {
		return
	}
	if _, err := store.RecordRun(summary); err != nil {
		contract.LogWarn("History tracking failed", err)
	}
}
