package core

import (
	"fmt"
	"io"

	"github.com/huangsam/culprit/internal/contract"
	"github.com/huangsam/culprit/schema"
)

// BlameInput pairs an open blame source with its path prefix sub-option.
type BlameInput struct {
	Source contract.BlameSource // Stream of blame records
	Prefix string               // Prefix stripped from reported paths
}

// MalformedBlameError reports a blame record that cannot key an index
// entry. The source name points at the offending input file.
type MalformedBlameError struct {
	Source string             // Blame source that produced the record
	Record schema.BlameRecord // Offending record
	Reason string             // Which invariant the record breaks
}

func (e *MalformedBlameError) Error() string {
	return fmt.Sprintf("malformed blame record from %s: %s (%s:%d)", e.Source, e.Reason, e.Record.File, e.Record.Line)
}

// BlameIndex holds the merged blame entries of one repo kind, keyed by
// normalized file path and line number.
type BlameIndex struct {
	repoKind string
	entries  map[blameKey]schema.BlameRecord
}

type blameKey struct {
	file string
	line int
}

// RepoKind names the repo adapter the index was merged from.
func (ix *BlameIndex) RepoKind() string {
	return ix.repoKind
}

// Len returns the number of distinct (file, line) entries.
func (ix *BlameIndex) Len() int {
	return len(ix.entries)
}

// Lookup finds the blame entry covering a reported path and line. The
// path is normalized the same way index keys were, so spelling variants
// of the same file still match. Lookups never mutate the index.
func (ix *BlameIndex) Lookup(file string, line int) (schema.BlameRecord, bool) {
	rec, ok := ix.entries[blameKey{file: contract.NormalizeSourcePath(file, ""), line: line}]
	return rec, ok
}

// BuildIndexes drains every blame source into one index per repo kind,
// kinds ordered by first appearance. Within a kind, later sources
// overwrite earlier entries for the same key, and within one source the
// last record for a key wins. Author names go through the alias table
// while entries are added so lookups return canonical names.
func BuildIndexes(inputs []BlameInput, aliases map[string]string) ([]*BlameIndex, error) {
	var indexes []*BlameIndex
	byKind := map[string]*BlameIndex{}
	for _, input := range inputs {
		kind := input.Source.RepoKind()
		index, ok := byKind[kind]
		if !ok {
			index = &BlameIndex{repoKind: kind, entries: map[blameKey]schema.BlameRecord{}}
			byKind[kind] = index
			indexes = append(indexes, index)
		}
		if err := index.merge(input, aliases); err != nil {
			return nil, err
		}
	}
	return indexes, nil
}

// merge adds every record of one source to the index.
func (ix *BlameIndex) merge(input BlameInput, aliases map[string]string) error {
	for {
		rec, err := input.Source.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if rec.File == "" {
			return &MalformedBlameError{Source: input.Source.Name(), Record: rec, Reason: "empty file path"}
		}
		if rec.Line < 1 {
			return &MalformedBlameError{Source: input.Source.Name(), Record: rec, Reason: "line number must be positive"}
		}
		file := contract.NormalizeSourcePath(rec.File, input.Prefix)
		if file == "" {
			return &MalformedBlameError{Source: input.Source.Name(), Record: rec, Reason: "path normalizes to nothing"}
		}
		rec.Author = schema.CanonicalizeAuthor(rec.Author, aliases)
		ix.entries[blameKey{file: file, line: rec.Line}] = rec
	}
}
