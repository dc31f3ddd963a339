// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"io"
	"time"

	"github.com/huangsam/culprit/internal/contract"
	"github.com/huangsam/culprit/internal/parquet"
	"github.com/huangsam/culprit/schema"
)

// WriteRawRecords streams attributed records out in the configured raw
// format. TSV goes to stdout or --output-file; parquet always goes to
// --output-file because the format is not line-oriented.
func WriteRawRecords(stream contract.AttributedStream, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.ParquetOut:
		if err := parquet.WriteRawStream(stream, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing parquet output: %w", err)
		}
		notifyFileWritten(cfg, "Wrote parquet")
		return nil
	default:
		// Default to tab-separated lines
		return writeWithFile(cfg, func(w io.Writer) error {
			return writeRawTSV(stream, w)
		}, "Wrote raw records")
	}
}

// WriteSummaryResults writes the aggregate report, dispatching based on the
// output format configured.
func WriteSummaryResults(summary *schema.Summary, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtFloat := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg, func(w io.Writer) error {
			return writeJSON(w, summary)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.YAMLOut:
		if err := writeWithFile(cfg, func(w io.Writer) error {
			return writeYAML(w, summary)
		}, "Wrote YAML"); err != nil {
			return fmt.Errorf("error writing YAML output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg, func(w io.Writer) error {
			return writeSummaryCSV(summary, fmtFloat, w)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg, func(w io.Writer) error {
			return writeSummaryTable(summary, cfg, fmtFloat, duration, w)
		}, "Wrote table")
	}
	return nil
}
