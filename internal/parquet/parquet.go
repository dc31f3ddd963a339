// Package parquet provides data structures and functions for exporting
// culprit attribution data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/culprit/internal/contract"
	"github.com/huangsam/culprit/schema"
	"github.com/parquet-go/parquet-go"
)

// rawBatchSize bounds how many attributed records buffer between writes
// so raw exports stream instead of holding every record in memory.
const rawBatchSize = 1024

// RawRecord represents a single attributed defect in raw output.
type RawRecord struct {
	// Analyzer is the tool that reported the defect
	Analyzer string `parquet:"analyzer,snappy"`

	// FilePath is the source path exactly as the analyzer reported it
	FilePath string `parquet:"file,snappy"`

	// LineNumber is the reported defect line, 0 for file-level findings
	LineNumber int32 `parquet:"line,snappy"`

	// Kind is the tool-specific defect category
	Kind string `parquet:"kind,snappy"`

	// Message is the defect description
	Message string `parquet:"message,snappy"`

	// Author is the attributed author or the unattributed placeholder
	Author string `parquet:"author,snappy"`

	// Revision is the blamed revision (nullable, empty when unmatched)
	Revision *string `parquet:"revision,optional,snappy"`

	// Matched reports whether a blame entry covered the defect line
	Matched bool `parquet:"matched,snappy"`
}

// RunRow represents a single stored attribution run with metadata.
// This struct maps to the culprit_runs database table.
type RunRow struct {
	// RunID is the unique identifier for this attribution run
	RunID string `parquet:"run_id,snappy"`

	// CreatedAt is when the run was recorded (stored as TIMESTAMP with nanosecond precision)
	CreatedAt time.Time `parquet:"created_at,snappy"`

	// Version is the culprit version that produced the run
	Version string `parquet:"version,snappy"`

	// Args is the space-joined command line of the run (nullable)
	Args *string `parquet:"args,optional,snappy"`

	// TotalDefects is the number of defect records in the run
	TotalDefects int32 `parquet:"total_defects,snappy"`

	// AttributedDefects is the number of records matched to an author
	AttributedDefects int32 `parquet:"attributed_defects,snappy"`

	// UnattributedDefects is the number of records without an author
	UnattributedDefects int32 `parquet:"unattributed_defects,snappy"`
}

// AuthorRow represents one per-author, per-kind defect count of a run.
// This struct maps to the culprit_run_authors database table.
type AuthorRow struct {
	// RunID references the parent attribution run
	RunID string `parquet:"run_id,snappy"`

	// Author is the canonical author name or the unattributed placeholder
	Author string `parquet:"author,snappy"`

	// Kind is the tool-specific defect category
	Kind string `parquet:"kind,snappy"`

	// DefectCount is how many defects of this kind the author owns
	DefectCount int32 `parquet:"defect_count,snappy"`
}

// NewRawRecord converts an attributed record into its Parquet row form.
func NewRawRecord(rec schema.AttributedRecord) RawRecord {
	row := RawRecord{
		Analyzer:   rec.Analyzer,
		FilePath:   rec.File,
		LineNumber: int32(rec.Line),
		Kind:       rec.Kind,
		Message:    rec.Message,
		Author:     rec.Author,
		Matched:    rec.Matched,
	}
	if rec.Revision != "" {
		revision := rec.Revision
		row.Revision = &revision
	}
	return row
}

// WriteRawStream drains attributed records into a Parquet file in
// batches so arbitrarily large runs never buffer whole.
func WriteRawStream(stream contract.AttributedStream, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the RawRecord struct tags
	writer := parquet.NewGenericWriter[RawRecord](file)

	batch := make([]RawRecord, 0, rawBatchSize)
	for {
		rec, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		batch = append(batch, NewRawRecord(rec))
		if len(batch) == rawBatchSize {
			if _, err := writer.Write(batch); err != nil {
				return fmt.Errorf("failed to write data to parquet file: %w", err)
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if _, err := writer.Write(batch); err != nil {
			return fmt.Errorf("failed to write data to parquet file: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteRunRowsParquet writes a slice of RunRow structs to a Parquet file.
func WriteRunRowsParquet(data []RunRow, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the RunRow struct tags
	writer := parquet.NewGenericWriter[RunRow](file)

	// Write all records to the file
	// The Write method accepts a variadic slice
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteAuthorRowsParquet writes a slice of AuthorRow structs to a Parquet file.
func WriteAuthorRowsParquet(data []AuthorRow, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the AuthorRow struct tags
	writer := parquet.NewGenericWriter[AuthorRow](file)

	// Write all records to the file
	// The Write method accepts a variadic slice
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// MockFetchRunRows generates sample RunRow data for demonstration.
func MockFetchRunRows() []RunRow {
	now := time.Now()
	args1 := "attribute --flake8 report.txt --git blame.txt"
	args2 := "attribute --pylint pylint.txt --git blame.txt --output json"
	// Note: args3 is nil to demonstrate nullable fields

	return []RunRow{
		{
			RunID:               "0f8fad5b-d9cb-469f-a165-70867728950e",
			CreatedAt:           now.Add(-2 * time.Hour),
			Version:             "1.4.0",
			Args:                &args1,
			TotalDefects:        150,
			AttributedDefects:   120,
			UnattributedDefects: 30,
		},
		{
			RunID:               "7c9e6679-7425-40de-944b-e07fc1f90ae7",
			CreatedAt:           now.Add(-24 * time.Hour),
			Version:             "1.3.2",
			Args:                &args2,
			TotalDefects:        75,
			AttributedDefects:   75,
			UnattributedDefects: 0,
		},
		{
			RunID:               "3bbcee75-cecc-45f5-b5b1-6f0d8e8a2a1d",
			CreatedAt:           now.Add(-10 * time.Minute),
			Version:             "dev",
			Args:                nil, // No command line recorded - nullable field
			TotalDefects:        12,
			AttributedDefects:   9,
			UnattributedDefects: 3,
		},
	}
}

// MockFetchAuthorRows generates sample AuthorRow data for demonstration.
func MockFetchAuthorRows() []AuthorRow {
	return []AuthorRow{
		{
			RunID:       "0f8fad5b-d9cb-469f-a165-70867728950e",
			Author:      "Alice Example",
			Kind:        "E501",
			DefectCount: 48,
		},
		{
			RunID:       "0f8fad5b-d9cb-469f-a165-70867728950e",
			Author:      "Alice Example",
			Kind:        "W0612",
			DefectCount: 22,
		},
		{
			RunID:       "0f8fad5b-d9cb-469f-a165-70867728950e",
			Author:      "Bob Ondisk",
			Kind:        "E501",
			DefectCount: 50,
		},
		{
			RunID:       "0f8fad5b-d9cb-469f-a165-70867728950e",
			Author:      schema.Unattributed,
			Kind:        "E303",
			DefectCount: 30,
		},
		{
			RunID:       "7c9e6679-7425-40de-944b-e07fc1f90ae7",
			Author:      "Bob Ondisk",
			Kind:        "C0114",
			DefectCount: 75,
		},
	}
}

// ConvertRunRecords converts schema.RunRecord to RunRow for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []RunRow {
	result := make([]RunRow, len(records))
	for i, record := range records {
		result[i] = RunRow{
			RunID:               record.RunID,
			CreatedAt:           record.CreatedAt,
			Version:             record.Version,
			TotalDefects:        record.Total,
			AttributedDefects:   record.Attributed,
			UnattributedDefects: record.Unattributed,
		}
		if record.Args != "" {
			args := record.Args
			result[i].Args = &args
		}
	}
	return result
}

// ConvertAuthorRowRecords converts schema.AuthorRowRecord to AuthorRow for Parquet export.
func ConvertAuthorRowRecords(records []schema.AuthorRowRecord) []AuthorRow {
	result := make([]AuthorRow, len(records))
	for i, record := range records {
		result[i] = AuthorRow{
			RunID:       record.RunID,
			Author:      record.Author,
			Kind:        record.Kind,
			DefectCount: record.Count,
		}
	}
	return result
}
