package core

import (
	"errors"
	"io"
	"testing"

	"github.com/huangsam/culprit/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBlameSource replays canned blame records, then an optional error
// instead of io.EOF.
type fakeBlameSource struct {
	name string
	kind string
	recs []schema.BlameRecord
	err  error
	pos  int
}

func (s *fakeBlameSource) Next() (schema.BlameRecord, error) {
	if s.pos < len(s.recs) {
		rec := s.recs[s.pos]
		s.pos++
		return rec, nil
	}
	if s.err != nil {
		return schema.BlameRecord{}, s.err
	}
	return schema.BlameRecord{}, io.EOF
}

func (s *fakeBlameSource) Name() string {
	return s.name
}

func (s *fakeBlameSource) RepoKind() string {
	return s.kind
}

// fakeDefectSource replays canned defect records, then an optional error
// instead of io.EOF.
type fakeDefectSource struct {
	name string
	recs []schema.DefectRecord
	err  error
	pos  int
}

func (s *fakeDefectSource) Next() (schema.DefectRecord, error) {
	if s.pos < len(s.recs) {
		rec := s.recs[s.pos]
		s.pos++
		return rec, nil
	}
	if s.err != nil {
		return schema.DefectRecord{}, s.err
	}
	return schema.DefectRecord{}, io.EOF
}

func (s *fakeDefectSource) Name() string {
	return s.name
}

func blameRec(kind, file string, line int, author, revision string) schema.BlameRecord {
	return schema.BlameRecord{RepoKind: kind, File: file, Line: line, Author: author, Revision: revision}
}

func TestBuildIndexesPerKind(t *testing.T) {
	inputs := []BlameInput{
		{Source: &fakeBlameSource{name: "git:a.txt", kind: "git", recs: []schema.BlameRecord{
			blameRec("git", "src/a.py", 1, "alice", "r1"),
			blameRec("git", "src/a.py", 2, "bob", "r2"),
		}}},
		{Source: &fakeBlameSource{name: "svn:b.xml", kind: "svn", recs: []schema.BlameRecord{
			blameRec("svn", "src/a.py", 1, "carol", "40"),
		}}},
		{Source: &fakeBlameSource{name: "git:c.txt", kind: "git", recs: []schema.BlameRecord{
			blameRec("git", "src/b.py", 9, "dave", "r3"),
		}}},
	}

	indexes, err := BuildIndexes(inputs, nil)
	require.NoError(t, err)
	require.Len(t, indexes, 2)

	// kinds keep first-appearance order, same-kind sources merge
	assert.Equal(t, "git", indexes[0].RepoKind())
	assert.Equal(t, "svn", indexes[1].RepoKind())
	assert.Equal(t, 3, indexes[0].Len())
	assert.Equal(t, 1, indexes[1].Len())

	got, ok := indexes[0].Lookup("src/b.py", 9)
	require.True(t, ok)
	assert.Equal(t, "dave", got.Author)
}

func TestBuildIndexesLastWriteWins(t *testing.T) {
	inputs := []BlameInput{
		{Source: &fakeBlameSource{name: "git:old.txt", kind: "git", recs: []schema.BlameRecord{
			blameRec("git", "src/a.py", 1, "alice", "r1"),
			blameRec("git", "src/a.py", 1, "bob", "r2"), // same key within one source
		}}},
		{Source: &fakeBlameSource{name: "git:new.txt", kind: "git", recs: []schema.BlameRecord{
			blameRec("git", "src/a.py", 1, "carol", "r3"), // same key from a later source
		}}},
	}

	indexes, err := BuildIndexes(inputs, nil)
	require.NoError(t, err)
	require.Len(t, indexes, 1)
	assert.Equal(t, 1, indexes[0].Len())

	got, ok := indexes[0].Lookup("src/a.py", 1)
	require.True(t, ok)
	assert.Equal(t, "carol", got.Author)
	assert.Equal(t, "r3", got.Revision)
}

func TestBuildIndexesNormalizesKeys(t *testing.T) {
	inputs := []BlameInput{
		{Source: &fakeBlameSource{name: "git:a.txt", kind: "git", recs: []schema.BlameRecord{
			blameRec("git", `.\src\a.py`, 1, "alice", "r1"),
		}}},
		{
			Source: &fakeBlameSource{name: "git:b.txt", kind: "git", recs: []schema.BlameRecord{
				blameRec("git", "build/src/b.py", 2, "bob", "r2"),
			}},
			Prefix: "build/",
		},
	}

	indexes, err := BuildIndexes(inputs, nil)
	require.NoError(t, err)
	require.Len(t, indexes, 1)

	// lookups normalize their argument the same way
	_, ok := indexes[0].Lookup("./src/a.py", 1)
	assert.True(t, ok)
	_, ok = indexes[0].Lookup("src/a.py", 1)
	assert.True(t, ok)

	// the prefix is gone from the key, the unstripped spelling is not
	_, ok = indexes[0].Lookup("src/b.py", 2)
	assert.True(t, ok)
	_, ok = indexes[0].Lookup("build/src/b.py", 2)
	assert.False(t, ok)
}

func TestBuildIndexesCanonicalizesAuthors(t *testing.T) {
	aliases := map[string]string{"ajones": "Alice Jones", "alice.jones": "Alice Jones"}
	inputs := []BlameInput{
		{Source: &fakeBlameSource{name: "git:a.txt", kind: "git", recs: []schema.BlameRecord{
			blameRec("git", "a.py", 1, "ajones", "r1"),
			blameRec("git", "a.py", 2, "alice.jones", "r2"),
			blameRec("git", "a.py", 3, "bob", "r3"),
		}}},
	}

	indexes, err := BuildIndexes(inputs, aliases)
	require.NoError(t, err)

	for line := 1; line <= 2; line++ {
		got, ok := indexes[0].Lookup("a.py", line)
		require.True(t, ok)
		assert.Equal(t, "Alice Jones", got.Author)
	}
	got, ok := indexes[0].Lookup("a.py", 3)
	require.True(t, ok)
	assert.Equal(t, "bob", got.Author)
}

func TestBuildIndexesMalformedRecords(t *testing.T) {
	tests := []struct {
		name string
		rec  schema.BlameRecord
	}{
		{"empty file", blameRec("git", "", 1, "alice", "r1")},
		{"zero line", blameRec("git", "a.py", 0, "alice", "r1")},
		{"negative line", blameRec("git", "a.py", -4, "alice", "r1")},
		{"path of separators", blameRec("git", ".//", 1, "alice", "r1")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inputs := []BlameInput{
				{Source: &fakeBlameSource{name: "git:bad.txt", kind: "git", recs: []schema.BlameRecord{tt.rec}}},
			}
			_, err := BuildIndexes(inputs, nil)
			require.Error(t, err)

			var malformed *MalformedBlameError
			require.True(t, errors.As(err, &malformed))
			assert.Equal(t, "git:bad.txt", malformed.Source)
			assert.NotEmpty(t, malformed.Reason)
		})
	}
}

func TestBuildIndexesForwardsSourceErrors(t *testing.T) {
	readErr := errors.New("disk gone")
	inputs := []BlameInput{
		{Source: &fakeBlameSource{name: "git:a.txt", kind: "git", err: readErr}},
	}
	_, err := BuildIndexes(inputs, nil)
	assert.ErrorIs(t, err, readErr)
}

func TestBuildIndexesEmpty(t *testing.T) {
	indexes, err := BuildIndexes(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, indexes)
}
