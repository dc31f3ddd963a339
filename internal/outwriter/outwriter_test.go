package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/culprit/internal/contract"
	"github.com/huangsam/culprit/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// fakeStream feeds canned attributed records to the raw writers.
type fakeStream struct {
	recs []schema.AttributedRecord
	err  error
	pos  int
}

func (s *fakeStream) Next() (schema.AttributedRecord, error) {
	if s.pos < len(s.recs) {
		rec := s.recs[s.pos]
		s.pos++
		return rec, nil
	}
	if s.err != nil {
		return schema.AttributedRecord{}, s.err
	}
	return schema.AttributedRecord{}, io.EOF
}

// sampleSummary returns a small aggregate report with attributed and
// unattributed authors.
func sampleSummary() *schema.Summary {
	return &schema.Summary{
		Version:      "1.2.3",
		Timestamp:    "2026-04-01T10:30:00Z",
		Args:         []string{"attribute", "--flake8", "report.txt"},
		Total:        5,
		Attributed:   4,
		Unattributed: 1,
		Authors: []schema.AuthorStats{
			{Author: "alice", Total: 3, Share: 60.0, Kinds: []schema.NameCount{{Name: "E501", Count: 2}, {Name: "F401", Count: 1}}},
			{Author: "bob", Total: 1, Share: 20.0, Kinds: []schema.NameCount{{Name: "E501", Count: 1}}},
			{Author: schema.Unattributed, Total: 1, Share: 20.0, Kinds: []schema.NameCount{{Name: "unused-import", Count: 1}}},
		},
		Analyzers: []schema.NameCount{{Name: "flake8", Count: 4}, {Name: "pylint", Count: 1}},
		Kinds:     []schema.NameCount{{Name: "E501", Count: 3}, {Name: "F401", Count: 1}, {Name: "unused-import", Count: 1}},
	}
}

func TestWriteRawTSV(t *testing.T) {
	stream := &fakeStream{recs: []schema.AttributedRecord{
		{DefectRecord: schema.DefectRecord{Analyzer: "pylint", File: "src/a.py", Line: 10, Kind: "unused-import", Message: "Unused import os"}, Author: "alice", Revision: "8d1a2b3c", Matched: true},
		{DefectRecord: schema.DefectRecord{Analyzer: "flake8", File: "lib/util.py", Line: 0, Kind: "E999"}, Author: schema.Unattributed},
	}}

	var buf bytes.Buffer
	require.NoError(t, writeRawTSV(stream, &buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3, "Header plus one line per record")

	assert.Equal(t, strings.Join(schema.RawColumns, "\t"), lines[0])
	assert.Equal(t, "pylint\tsrc/a.py\t10\tunused-import\tUnused import os\talice\t8d1a2b3c\ttrue", lines[1])
	assert.Equal(t, "flake8\tlib/util.py\t0\tE999\t\tunattributed\t\tfalse", lines[2])
}

func TestWriteRawTSVEscapes(t *testing.T) {
	stream := &fakeStream{recs: []schema.AttributedRecord{
		{DefectRecord: schema.DefectRecord{Analyzer: "pylint", File: "src/a.py", Line: 2, Kind: "bad-docstring", Message: "first\tsecond\nthird"}, Author: "alice", Matched: true},
	}}

	var buf bytes.Buffer
	require.NoError(t, writeRawTSV(stream, &buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2, "Escaped record must stay on one line")
	assert.Contains(t, lines[1], `first\tsecond\nthird`)

	fields := strings.Split(lines[1], "\t")
	require.Len(t, fields, 8, "Escaped tabs must not add columns")
	assert.Equal(t, contract.UnescapeTSVField(fields[4]), "first\tsecond\nthird")
}

func TestWriteRawTSVForwardsErrors(t *testing.T) {
	streamErr := errors.New("adapter gave up")
	stream := &fakeStream{
		recs: []schema.AttributedRecord{{DefectRecord: schema.DefectRecord{Analyzer: "pylint", File: "a.py", Line: 1, Kind: "x"}}},
		err:  streamErr,
	}

	var buf bytes.Buffer
	err := writeRawTSV(stream, &buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, streamErr)
}

func TestWriteSummaryTable(t *testing.T) {
	cfg := &contract.Config{Precision: 1, Width: 120, HistoryBackend: schema.NoneBackend}
	fmtFloat := createFormatters(cfg.Precision)

	var buf bytes.Buffer
	err := writeSummaryTable(sampleSummary(), cfg, fmtFloat, 1500*time.Millisecond, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "bob")
	assert.Contains(t, out, schema.Unattributed)
	assert.Contains(t, out, "60.0")
	assert.Contains(t, out, "Critical", "Share of 60 should carry the critical label")
	assert.Contains(t, out, "E501:2, F401:1")
	assert.Contains(t, out, "Attributed 4 of 5 defects (1 unattributed)")
	assert.Contains(t, out, "completed in 1.5s")
	assert.Contains(t, out, "History backend: none")
}

func TestWriteSummaryCSV(t *testing.T) {
	fmtFloat := createFormatters(1)

	var buf bytes.Buffer
	require.NoError(t, writeSummaryCSV(sampleSummary(), fmtFloat, &buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5, "Header plus one row per author and kind")

	assert.Equal(t, []string{"author", "kind", "count", "author_total", "share", "label"}, rows[0])
	assert.Equal(t, []string{"alice", "E501", "2", "3", "60.0", "Critical"}, rows[1])
	assert.Equal(t, []string{"alice", "F401", "1", "3", "60.0", "Critical"}, rows[2])
	assert.Equal(t, []string{"bob", "E501", "1", "1", "20.0", "Moderate"}, rows[3])
	assert.Equal(t, []string{schema.Unattributed, "unused-import", "1", "1", "20.0", "Moderate"}, rows[4])
}

func TestWriteSummaryJSONRoundTrip(t *testing.T) {
	summary := sampleSummary()

	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, summary))

	var decoded schema.Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, *summary, decoded)
}

func TestWriteSummaryYAMLRoundTrip(t *testing.T) {
	summary := sampleSummary()

	var buf bytes.Buffer
	require.NoError(t, writeYAML(&buf, summary))

	var decoded schema.Summary
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, *summary, decoded)
}

func TestWriteSummaryResultsToFile(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "summary.json")
	cfg := &contract.Config{
		Output:     schema.JSONOut,
		OutputFile: outputPath,
		Precision:  1,
	}

	require.NoError(t, WriteSummaryResults(sampleSummary(), cfg, time.Second))

	raw, err := os.ReadFile(outputPath)
	require.NoError(t, err)

	var decoded schema.Summary
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, 5, decoded.Total)
	assert.Len(t, decoded.Authors, 3)
}

func TestWriteRawRecordsToFile(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "raw.tsv")
	cfg := &contract.Config{
		Rawdata:    true,
		Output:     schema.TSVOut,
		OutputFile: outputPath,
	}
	stream := &fakeStream{recs: []schema.AttributedRecord{
		{DefectRecord: schema.DefectRecord{Analyzer: "pylint", File: "src/a.py", Line: 10, Kind: "unused-import"}, Author: "alice", Revision: "8d1a2b3c", Matched: true},
	}}

	require.NoError(t, WriteRawRecords(stream, cfg))

	raw, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(schema.RawColumns, "\t"), lines[0])
}

func TestWriteRawRecordsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "raw.parquet")
	cfg := &contract.Config{
		Rawdata:    true,
		Output:     schema.ParquetOut,
		OutputFile: outputPath,
	}
	stream := &fakeStream{recs: []schema.AttributedRecord{
		{DefectRecord: schema.DefectRecord{Analyzer: "pylint", File: "src/a.py", Line: 10, Kind: "unused-import"}, Author: "alice", Revision: "8d1a2b3c", Matched: true},
	}}

	require.NoError(t, WriteRawRecords(stream, cfg))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestFormatTopKinds(t *testing.T) {
	tests := []struct {
		name  string
		kinds []schema.NameCount
		want  string
	}{
		{
			name:  "no kinds",
			kinds: nil,
			want:  "-",
		},
		{
			name:  "single kind",
			kinds: []schema.NameCount{{Name: "E501", Count: 4}},
			want:  "E501:4",
		},
		{
			name: "sorted by count descending",
			kinds: []schema.NameCount{
				{Name: "C0114", Count: 1},
				{Name: "E501", Count: 5},
				{Name: "F401", Count: 3},
			},
			want: "E501:5, F401:3, C0114:1",
		},
		{
			name: "limited to top three",
			kinds: []schema.NameCount{
				{Name: "A", Count: 9},
				{Name: "B", Count: 8},
				{Name: "C", Count: 7},
				{Name: "D", Count: 6},
			},
			want: "A:9, B:8, C:7",
		},
		{
			name: "ties keep name order",
			kinds: []schema.NameCount{
				{Name: "E501", Count: 2},
				{Name: "F401", Count: 2},
			},
			want: "E501:2, F401:2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatTopKinds(tt.kinds))
		})
	}
}

func TestTruncateCell(t *testing.T) {
	assert.Equal(t, "short", truncateCell("short", 20))
	assert.Equal(t, "E501:12, F4...", truncateCell("E501:12, F401:3, C0114:1", 14))
	// Tiny widths leave the cell alone rather than producing bare dots
	assert.Equal(t, "abcdef", truncateCell("abcdef", 3))
}

func TestGetMaxKindsWidth(t *testing.T) {
	wide := &contract.Config{Width: 200}
	assert.Equal(t, 72, getMaxKindsWidth(wide), "Very wide terminals clamp to the maximum")

	narrow := &contract.Config{Width: 60}
	assert.Equal(t, 16, getMaxKindsWidth(narrow), "Narrow terminals clamp to the minimum")

	medium := &contract.Config{Width: 100}
	assert.Equal(t, 48, getMaxKindsWidth(medium))
}
