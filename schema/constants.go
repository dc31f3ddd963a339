package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// AdapterKind represents which side of the pipeline an adapter feeds.
	AdapterKind string

	// DatabaseBackend represents the database backend for run history.
	DatabaseBackend string
)

// Unattributed is the pseudo-author assigned to defects that no blame
// record covers. It participates in aggregation like a regular author so
// totals stay internally consistent.
const Unattributed = "unattributed"

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default in summary mode
	JSONOut    OutputMode = "json"
	YAMLOut    OutputMode = "yaml"
	CSVOut     OutputMode = "csv"
	TSVOut     OutputMode = "tsv" // default in raw mode
	ParquetOut OutputMode = "parquet"
)

// All adapter kinds supported.
const (
	AnalyzerAdapter AdapterKind = "analyzer"
	RepoAdapter     AdapterKind = "repo"
)

// All history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// ValidSummaryModes lists output modes accepted in summary mode.
var ValidSummaryModes = map[OutputMode]struct{}{
	TextOut: {},
	JSONOut: {},
	YAMLOut: {},
	CSVOut:  {},
}

// ValidRawModes lists output modes accepted in raw mode.
var ValidRawModes = map[OutputMode]struct{}{
	TSVOut:     {},
	ParquetOut: {},
}

// RawColumns names the raw attribution output columns in order. The
// lines adapter recognizes the same header so raw output can be fed
// back in as defect input.
var RawColumns = []string{
	"analyzer",
	"file",
	"line",
	"kind",
	"message",
	"author",
	"revision",
	"matched",
}

// ValidHistoryBackends lists all valid history backends.
var ValidHistoryBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// DefaultOutputMode returns the output mode used when none is given.
func DefaultOutputMode(rawdata bool) OutputMode {
	if rawdata {
		return TSVOut
	}
	return TextOut
}
