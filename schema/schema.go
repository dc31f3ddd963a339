// Package schema has configs, models and global constants for all parts of culprit.
package schema

// DefectRecord represents a single static-analysis finding as normalized by
// an analyzer adapter. Analyzer and File are always non-empty; Line may be
// zero when the tool reports a file-level finding.
type DefectRecord struct {
	Analyzer string `json:"analyzer"` // Name of the analyzer adapter that produced the finding
	File     string `json:"file"`     // Source path as reported by the analyzer
	Line     int    `json:"line"`     // 1-based line number, zero for file-level findings
	Kind     string `json:"kind"`     // Tool-specific category or severity label
	Message  string `json:"message"`  // Free-text description of the finding
}

// BlameRecord represents the authorship of a single source line as normalized
// by a repo adapter. Records are consumed entirely into a blame index before
// correlation begins.
type BlameRecord struct {
	RepoKind string // Name of the repo adapter that produced the record
	File     string // Source path as reported by the VCS tool
	Line     int    // 1-based line number
	Author   string // Identity of the last committer of the line, may be empty
	Revision string // Commit or changeset identifier, may be empty
}

// AttributedRecord joins a defect with the author whose line carries it.
// Exactly one is produced per input DefectRecord; when no blame record
// matches, Author is Unattributed and Matched is false.
type AttributedRecord struct {
	DefectRecord
	Author   string `json:"author"`   // Resolved author, or Unattributed
	Revision string `json:"revision"` // Resolved revision, empty when nothing matched
	Matched  bool   `json:"matched"`  // Whether a blame record was found for (file, line)
}
