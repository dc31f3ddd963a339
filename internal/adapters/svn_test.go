package adapters

import (
	_ "embed"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/huangsam/culprit/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/svn_blame.xml
var svnBlameFixture string

func TestSvnReadBlame(t *testing.T) {
	in := &closeTracker{Reader: strings.NewReader(svnBlameFixture)}
	src := svnRepo{}.Read(in, "blame.xml")
	assert.Equal(t, "svn:blame.xml", src.Name())
	assert.Equal(t, "svn", src.RepoKind())

	records, err := drainBlame(src)
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.True(t, in.closed)

	assert.Equal(t, schema.BlameRecord{
		RepoKind: "svn",
		File:     "trunk/src/ingest.py",
		Line:     1,
		Author:   "alice",
		Revision: "4171",
	}, records[0])
	assert.Equal(t, "bob", records[1].Author)
	assert.Equal(t, "4205", records[1].Revision)

	// entries without a commit element stay unattributed
	assert.Equal(t, 3, records[2].Line)
	assert.Empty(t, records[2].Author)
	assert.Empty(t, records[2].Revision)

	// second target switches the file path
	assert.Equal(t, "trunk/lib/util.py", records[3].File)
	assert.Equal(t, 1, records[3].Line)
}

func TestSvnParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not xml", "rev author line content\n"},
		{"truncated document", "<blame><target path=\"a.py\"><entry line-number=\"1\">"},
		{"entry outside target", "<blame><entry line-number=\"1\"></entry></blame>"},
		{"target without path", "<blame><target><entry line-number=\"1\"></entry></target></blame>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := &closeTracker{Reader: strings.NewReader(tt.input)}
			src := svnRepo{}.Read(in, "bad.xml")
			_, err := drainBlame(src)
			require.Error(t, err)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, "svn", parseErr.Adapter)
			assert.Equal(t, "bad.xml", parseErr.Path)
			assert.True(t, in.closed)
		})
	}
}

func TestSvnEmptyDocument(t *testing.T) {
	src := svnRepo{}.Read(io.NopCloser(strings.NewReader("<blame></blame>")), "empty.xml")
	records, err := drainBlame(src)
	require.NoError(t, err)
	assert.Empty(t, records)
}
