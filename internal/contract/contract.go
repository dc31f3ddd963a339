// Package contract provides interfaces and shared utilities for the Culprit CLI's internal architecture.
package contract

import (
	"github.com/huangsam/culprit/schema"
)

// DefectSource produces normalized defect records one at a time.
// Next returns io.EOF once the source is exhausted. A source owns its
// underlying reader and closes it on EOF and on every error path, so
// callers never manage file handles directly.
type DefectSource interface {
	// Next returns the next defect record, io.EOF at end of input, or a
	// parse error when a line cannot be normalized.
	Next() (schema.DefectRecord, error)

	// Name identifies the source for error and warning messages,
	// typically "<adapter>:<path>".
	Name() string
}

// BlameSource produces normalized blame records one at a time.
// Same termination and handle-ownership contract as DefectSource. Blame
// sources are always drained to exhaustion before correlation begins.
type BlameSource interface {
	Next() (schema.BlameRecord, error)
	Name() string

	// RepoKind returns the repo adapter name that produced this source.
	RepoKind() string
}

// AttributedStream yields correlated records one at a time with io.EOF
// after the last one. Output writers consume this instead of a concrete
// correlation so they can be fed from tests directly.
type AttributedStream interface {
	Next() (schema.AttributedRecord, error)
}

// HistoryStore defines the interface for persisting attribution runs.
// This allows the history layer to be mocked for testing.
type HistoryStore interface {
	// RecordRun persists one run's summary and returns its unique run ID
	RecordRun(summary *schema.Summary) (string, error)

	// ListRuns returns all stored runs ordered by creation time
	ListRuns() ([]schema.RunRecord, error)

	// ListAuthorRows returns all stored per-author rows ordered by run, author, kind
	ListAuthorRows() ([]schema.AuthorRowRecord, error)

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// Clear removes all stored runs and returns how many were deleted
	Clear() (int64, error)

	// Close closes the underlying connection
	Close() error
}
