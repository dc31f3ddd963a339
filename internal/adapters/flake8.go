package adapters

import (
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/culprit/internal/contract"
	"github.com/huangsam/culprit/schema"
)

// flake8Analyzer reads flake8 default output, one finding per line in
// the path:line:column: code message layout.
type flake8Analyzer struct{}

func (flake8Analyzer) Name() string {
	return "flake8"
}

func (flake8Analyzer) Notes() string {
	return "flake8 default output, path:line:col: code message"
}

func (a flake8Analyzer) Read(r io.ReadCloser, path string) contract.DefectSource {
	return &flake8Source{lr: newLineReader(a.Name(), path, r)}
}

type flake8Source struct {
	lr *lineReader
}

func (s *flake8Source) Name() string {
	return s.lr.name()
}

func (s *flake8Source) Next() (schema.DefectRecord, error) {
	for {
		line, err := s.lr.nextLine()
		if err != nil {
			return schema.DefectRecord{}, err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		return s.parseFinding(line)
	}
}

func (s *flake8Source) parseFinding(line string) (schema.DefectRecord, error) {
	parts := strings.SplitN(line, ":", 4)
	if len(parts) < 4 {
		return schema.DefectRecord{}, s.lr.fail("expected path:line:col: code message")
	}
	path := strings.TrimSpace(parts[0])
	if path == "" {
		return schema.DefectRecord{}, s.lr.fail("empty source path")
	}
	lineno, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || lineno < 0 {
		return schema.DefectRecord{}, s.lr.fail("bad line number " + strconv.Quote(strings.TrimSpace(parts[1])))
	}
	if _, err := strconv.Atoi(strings.TrimSpace(parts[2])); err != nil {
		return schema.DefectRecord{}, s.lr.fail("bad column number " + strconv.Quote(strings.TrimSpace(parts[2])))
	}
	kind, message := cutFlake8Code(strings.TrimSpace(parts[3]))
	if kind == "" {
		return schema.DefectRecord{}, s.lr.fail("missing violation code")
	}
	return schema.DefectRecord{
		Analyzer: "flake8",
		File:     path,
		Line:     lineno,
		Kind:     kind,
		Message:  message,
	}, nil
}

// cutFlake8Code splits "E302 expected 2 blank lines" into the violation
// code and the message text. The message may be empty.
func cutFlake8Code(rest string) (string, string) {
	code, message, found := strings.Cut(rest, " ")
	if !found {
		return rest, ""
	}
	return code, strings.TrimSpace(message)
}
