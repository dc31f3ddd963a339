// Package adapters converts third-party analyzer reports and VCS blame
// output into culprit records. Each adapter owns one input format and
// yields records lazily so large report files never sit in memory whole.
package adapters

import (
	"io"

	"github.com/huangsam/culprit/internal/contract"
)

// Analyzer normalizes one static-analysis report format into defect records.
type Analyzer interface {
	// Name is the adapter key used for CLI flags and config sections.
	Name() string
	// Notes is a one-line format description for the adapters listing.
	Notes() string
	// Read wraps an open report so defects can be pulled one at a time.
	// The source owns r and closes it when the stream ends or fails.
	Read(r io.ReadCloser, path string) contract.DefectSource
}

// Repo normalizes one VCS blame format into blame records.
type Repo interface {
	// Name is the adapter key used for CLI flags and config sections.
	Name() string
	// Notes is a one-line format description for the adapters listing.
	Notes() string
	// Read wraps an open blame capture so records can be pulled one at
	// a time. The source owns r and closes it when the stream ends or fails.
	Read(r io.ReadCloser, path string) contract.BlameSource
}

// Registration order is fixed so flag registration, input collection and
// the adapters listing all present adapters the same way.
var analyzers = []Analyzer{
	pylintAnalyzer{},
	flake8Analyzer{},
	linesAnalyzer{},
}

var repos = []Repo{
	gitRepo{},
	svnRepo{},
}

// Analyzers returns all registered analyzer adapters.
func Analyzers() []Analyzer {
	return analyzers
}

// Repos returns all registered repo adapters.
func Repos() []Repo {
	return repos
}

// AnalyzerNames returns registered analyzer names in registration order.
func AnalyzerNames() []string {
	names := make([]string, 0, len(analyzers))
	for _, a := range analyzers {
		names = append(names, a.Name())
	}
	return names
}

// RepoNames returns registered repo names in registration order.
func RepoNames() []string {
	names := make([]string, 0, len(repos))
	for _, r := range repos {
		names = append(names, r.Name())
	}
	return names
}

// AnalyzerByName finds an analyzer adapter by its registered name.
func AnalyzerByName(name string) (Analyzer, bool) {
	for _, a := range analyzers {
		if a.Name() == name {
			return a, true
		}
	}
	return nil, false
}

// RepoByName finds a repo adapter by its registered name.
func RepoByName(name string) (Repo, bool) {
	for _, r := range repos {
		if r.Name() == name {
			return r, true
		}
	}
	return nil, false
}
