package adapters

import (
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/culprit/internal/contract"
	"github.com/huangsam/culprit/schema"
)

// linesAnalyzer reads tab-separated defect lines, the escape hatch for
// tools without a dedicated adapter. Columns are analyzer, file, line,
// kind and message with tabs and newlines escaped as \t and \n. The
// layout matches the raw attribution output so a raw run can be fed
// back in, extra columns and the header line are ignored.
type linesAnalyzer struct{}

func (linesAnalyzer) Name() string {
	return "lines"
}

func (linesAnalyzer) Notes() string {
	return "tab-separated analyzer/file/line/kind/message columns"
}

func (a linesAnalyzer) Read(r io.ReadCloser, path string) contract.DefectSource {
	return &linesSource{lr: newLineReader(a.Name(), path, r)}
}

type linesSource struct {
	lr      *lineReader
	started bool
}

func (s *linesSource) Name() string {
	return s.lr.name()
}

func (s *linesSource) Next() (schema.DefectRecord, error) {
	for {
		line, err := s.lr.nextLine()
		if err != nil {
			return schema.DefectRecord{}, err
		}
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if !s.started {
			s.started = true
			if isRawHeader(fields) {
				continue
			}
		}
		return s.parseFields(fields)
	}
}

func (s *linesSource) parseFields(fields []string) (schema.DefectRecord, error) {
	if len(fields) < 5 {
		return schema.DefectRecord{}, s.lr.fail("expected at least 5 tab-separated columns, got " + strconv.Itoa(len(fields)))
	}
	analyzer := contract.UnescapeTSVField(fields[0])
	if analyzer == "" {
		return schema.DefectRecord{}, s.lr.fail("empty analyzer column")
	}
	path := contract.UnescapeTSVField(fields[1])
	if path == "" {
		return schema.DefectRecord{}, s.lr.fail("empty file column")
	}
	lineno, err := strconv.Atoi(fields[2])
	if err != nil || lineno < 0 {
		return schema.DefectRecord{}, s.lr.fail("bad line number " + strconv.Quote(fields[2]))
	}
	return schema.DefectRecord{
		Analyzer: analyzer,
		File:     path,
		Line:     lineno,
		Kind:     contract.UnescapeTSVField(fields[3]),
		Message:  contract.UnescapeTSVField(fields[4]),
	}, nil
}

// isRawHeader reports whether the fields are the raw output header row.
func isRawHeader(fields []string) bool {
	if len(fields) < 5 {
		return false
	}
	for i, col := range schema.RawColumns[:5] {
		if fields[i] != col {
			return false
		}
	}
	return true
}
