package adapters

import "fmt"

// ParseError reports adapter input that could not be normalized. Report
// files are trusted as a whole or not at all, so one bad line stops the
// run instead of silently skewing attribution counts.
type ParseError struct {
	Adapter string // Adapter that was reading the input
	Path    string // Input file being read
	Line    int    // 1-based line number in the input, 0 when unknown
	Reason  string // What could not be parsed
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s adapter: %s:%d: %s", e.Adapter, e.Path, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s adapter: %s: %s", e.Adapter, e.Path, e.Reason)
}
