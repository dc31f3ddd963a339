package adapters

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/culprit/internal/contract"
	"github.com/huangsam/culprit/schema"
)

// svnRepo reads svn blame --xml output. The XML form carries the target
// path per file and the revision and author per line, which the plain
// text blame layout leaves out. One capture can hold several targets.
type svnRepo struct{}

func (svnRepo) Name() string {
	return "svn"
}

func (svnRepo) Notes() string {
	return "svn blame --xml output"
}

func (r svnRepo) Read(rc io.ReadCloser, path string) contract.BlameSource {
	return &svnBlameSource{rc: rc, dec: xml.NewDecoder(rc), path: path}
}

type svnBlameSource struct {
	rc      io.ReadCloser
	dec     *xml.Decoder
	path    string
	target  string
	sawRoot bool
	closed  bool
}

func (s *svnBlameSource) Name() string {
	return "svn:" + s.path
}

func (s *svnBlameSource) RepoKind() string {
	return "svn"
}

// svnEntry mirrors one <entry> element of svn blame --xml output. Lines
// not yet committed have no commit element and stay unattributed.
type svnEntry struct {
	LineNumber int `xml:"line-number,attr"`
	Commit     struct {
		Revision string `xml:"revision,attr"`
		Author   string `xml:"author"`
	} `xml:"commit"`
}

func (s *svnBlameSource) Next() (schema.BlameRecord, error) {
	if s.closed {
		return schema.BlameRecord{}, io.EOF
	}
	for {
		tok, err := s.dec.Token()
		if err == io.EOF {
			s.close()
			return schema.BlameRecord{}, io.EOF
		}
		if err != nil {
			return schema.BlameRecord{}, s.failToken(err)
		}
		// The decoder happily tokenizes plain text, so junk outside the
		// markup has to be rejected here.
		if text, ok := tok.(xml.CharData); ok && strings.TrimSpace(string(text)) != "" {
			return schema.BlameRecord{}, s.failParse(0, "unexpected text in blame document")
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if !s.sawRoot {
			if start.Name.Local != "blame" {
				return schema.BlameRecord{}, s.failParse(0, "expected blame document, found "+start.Name.Local)
			}
			s.sawRoot = true
			continue
		}
		switch start.Name.Local {
		case "target":
			s.target = xmlAttr(start, "path")
			if s.target == "" {
				return schema.BlameRecord{}, s.failParse(0, "target element without path attribute")
			}
		case "entry":
			if s.target == "" {
				return schema.BlameRecord{}, s.failParse(0, "entry element outside a target")
			}
			var entry svnEntry
			if err := s.dec.DecodeElement(&entry, &start); err != nil {
				return schema.BlameRecord{}, s.failParse(syntaxErrorLine(err), err.Error())
			}
			return schema.BlameRecord{
				RepoKind: "svn",
				File:     s.target,
				Line:     entry.LineNumber,
				Author:   entry.Commit.Author,
				Revision: entry.Commit.Revision,
			}, nil
		}
	}
}

func (s *svnBlameSource) close() {
	if !s.closed {
		s.closed = true
		_ = s.rc.Close()
	}
}

// failToken maps decoder failures to parse errors for bad XML and to
// wrapped read errors for everything else. A truncated document shows
// up here as a syntax error, not as end of input.
func (s *svnBlameSource) failToken(err error) error {
	s.close()
	var syntaxErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &ParseError{Adapter: "svn", Path: s.path, Line: syntaxErr.Line, Reason: syntaxErr.Msg}
	}
	return fmt.Errorf("read %s: %w", s.path, err)
}

func (s *svnBlameSource) failParse(line int, reason string) error {
	s.close()
	return &ParseError{Adapter: "svn", Path: s.path, Line: line, Reason: reason}
}

func syntaxErrorLine(err error) int {
	var syntaxErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) {
		return syntaxErr.Line
	}
	return 0
}

func xmlAttr(el xml.StartElement, name string) string {
	for _, attr := range el.Attr {
		if attr.Name.Local == name {
			return attr.Value
		}
	}
	return ""
}
