package adapters

import (
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/culprit/internal/contract"
	"github.com/huangsam/culprit/schema"
)

// gitRepo reads git blame --line-porcelain output. Every blamed line is
// an entry header followed by full commit headers and one tab-prefixed
// content line. Captures of several files can be concatenated into one
// input since each entry carries its own filename header.
type gitRepo struct{}

func (gitRepo) Name() string {
	return "git"
}

func (gitRepo) Notes() string {
	return "git blame --line-porcelain output"
}

func (r gitRepo) Read(rc io.ReadCloser, path string) contract.BlameSource {
	return &gitBlameSource{lr: newLineReader(r.Name(), path, rc)}
}

type gitBlameSource struct {
	lr *lineReader

	// entry state carried between the header line and its content line
	inEntry  bool
	revision string
	lineno   int
	author   string
	file     string
}

func (s *gitBlameSource) Name() string {
	return s.lr.name()
}

func (s *gitBlameSource) RepoKind() string {
	return "git"
}

func (s *gitBlameSource) Next() (schema.BlameRecord, error) {
	for {
		line, err := s.lr.nextLine()
		if err == io.EOF && s.inEntry {
			return schema.BlameRecord{}, s.lr.fail("input ends inside a blame entry")
		}
		if err != nil {
			return schema.BlameRecord{}, err
		}
		if !s.inEntry {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if err := s.parseEntryHeader(line); err != nil {
				return schema.BlameRecord{}, err
			}
			continue
		}
		if strings.HasPrefix(line, "\t") {
			return s.finishEntry()
		}
		s.parseCommitHeader(line)
	}
}

// parseEntryHeader reads the <revision> <orig-line> <final-line> line
// that opens each porcelain entry.
func (s *gitBlameSource) parseEntryHeader(line string) error {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return s.lr.fail("expected revision and line numbers in entry header")
	}
	if !isHexRevision(fields[0]) {
		return s.lr.fail("bad revision " + strconv.Quote(fields[0]))
	}
	final, err := strconv.Atoi(fields[2])
	if err != nil {
		return s.lr.fail("bad final line number " + strconv.Quote(fields[2]))
	}
	s.inEntry = true
	s.revision = fields[0]
	s.lineno = final
	s.author = ""
	s.file = ""
	return nil
}

// parseCommitHeader keeps the headers attribution needs and ignores the
// rest. git grows new headers over time so unknown ones must pass.
func (s *gitBlameSource) parseCommitHeader(line string) {
	if after, ok := strings.CutPrefix(line, "author "); ok {
		s.author = after
		return
	}
	if after, ok := strings.CutPrefix(line, "filename "); ok {
		s.file = after
	}
}

// finishEntry emits the record for the entry that just ended with a
// content line.
func (s *gitBlameSource) finishEntry() (schema.BlameRecord, error) {
	if s.file == "" {
		return schema.BlameRecord{}, s.lr.fail("blame entry missing filename header")
	}
	rec := schema.BlameRecord{
		RepoKind: "git",
		File:     s.file,
		Line:     s.lineno,
		Author:   s.author,
		Revision: s.revision,
	}
	s.inEntry = false
	return rec, nil
}

// isHexRevision reports whether a token looks like an abbreviated or
// full commit hash.
func isHexRevision(s string) bool {
	if len(s) < 7 {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') && (r < 'A' || r > 'F') {
			return false
		}
	}
	return true
}
