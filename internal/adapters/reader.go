package adapters

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// maxLineBytes caps a single input line. Generated reports can carry long
// messages but anything past this is not a report line.
const maxLineBytes = 1024 * 1024

// lineReader walks adapter input line by line, tracking the line number
// for error reporting and closing the handle once the stream is done.
type lineReader struct {
	adapter string
	path    string
	rc      io.ReadCloser
	scanner *bufio.Scanner
	lineno  int
	closed  bool
}

func newLineReader(adapter, path string, rc io.ReadCloser) *lineReader {
	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &lineReader{adapter: adapter, path: path, rc: rc, scanner: scanner}
}

// nextLine returns the next input line without its trailing newline or
// carriage return. It returns io.EOF after the last line and closes the
// underlying handle on both end of input and read failure.
func (lr *lineReader) nextLine() (string, error) {
	if lr.closed {
		return "", io.EOF
	}
	if lr.scanner.Scan() {
		lr.lineno++
		return strings.TrimSuffix(lr.scanner.Text(), "\r"), nil
	}
	if err := lr.scanner.Err(); err != nil {
		lr.close()
		return "", fmt.Errorf("read %s: %w", lr.path, err)
	}
	lr.close()
	return "", io.EOF
}

func (lr *lineReader) close() {
	if !lr.closed {
		lr.closed = true
		_ = lr.rc.Close()
	}
}

// fail closes the input and builds a parse error at the current line.
func (lr *lineReader) fail(reason string) *ParseError {
	lr.close()
	return &ParseError{Adapter: lr.adapter, Path: lr.path, Line: lr.lineno, Reason: reason}
}

// name identifies the source as adapter:path in warnings and errors.
func (lr *lineReader) name() string {
	return lr.adapter + ":" + lr.path
}
