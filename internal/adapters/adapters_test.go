package adapters

import (
	"io"
	"testing"

	"github.com/huangsam/culprit/internal/contract"
	"github.com/huangsam/culprit/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drainDefects pulls a defect source to exhaustion.
func drainDefects(src contract.DefectSource) ([]schema.DefectRecord, error) {
	var records []schema.DefectRecord
	for {
		rec, err := src.Next()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}

// drainBlame pulls a blame source to exhaustion.
func drainBlame(src contract.BlameSource) ([]schema.BlameRecord, error) {
	var records []schema.BlameRecord
	for {
		rec, err := src.Next()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}

// closeTracker records whether a source released its input handle.
type closeTracker struct {
	io.Reader
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

func TestRegistryOrder(t *testing.T) {
	assert.Equal(t, []string{"pylint", "flake8", "lines"}, AnalyzerNames())
	assert.Equal(t, []string{"git", "svn"}, RepoNames())
}

func TestRegistryLookup(t *testing.T) {
	for _, name := range AnalyzerNames() {
		a, ok := AnalyzerByName(name)
		require.True(t, ok)
		assert.Equal(t, name, a.Name())
		assert.NotEmpty(t, a.Notes())
	}
	for _, name := range RepoNames() {
		r, ok := RepoByName(name)
		require.True(t, ok)
		assert.Equal(t, name, r.Name())
		assert.NotEmpty(t, r.Notes())
	}

	_, ok := AnalyzerByName("clippy")
	assert.False(t, ok)
	_, ok = RepoByName("hg")
	assert.False(t, ok)
}

func TestRegistryNamesAreDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, name := range append(AnalyzerNames(), RepoNames()...) {
		assert.False(t, seen[name], "duplicate adapter name %s", name)
		seen[name] = true
	}
}
