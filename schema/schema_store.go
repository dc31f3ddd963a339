package schema

import "time"

// RunRecord represents a row from the culprit_runs table.
type RunRecord struct {
	RunID        string
	CreatedAt    time.Time
	Version      string
	Args         string
	Total        int32
	Attributed   int32
	Unattributed int32
	SummaryBlob  []byte // lz4-compressed JSON rendering of the Summary
}

// AuthorRowRecord represents a row from the culprit_run_authors table.
type AuthorRowRecord struct {
	RunID  string
	Author string
	Kind   string
	Count  int32
}
