package adapters

import (
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/culprit/internal/contract"
	"github.com/huangsam/culprit/schema"
)

// pylintAnalyzer reads pylint text reports. It accepts the modern
// path:line:column: code: message layout and the legacy
// path:line: [code(symbol), obj] message layout, and skips the module
// banners and score footer pylint prints around the findings.
type pylintAnalyzer struct{}

func (pylintAnalyzer) Name() string {
	return "pylint"
}

func (pylintAnalyzer) Notes() string {
	return "pylint text report, modern and legacy message layouts"
}

func (a pylintAnalyzer) Read(r io.ReadCloser, path string) contract.DefectSource {
	return &pylintSource{lr: newLineReader(a.Name(), path, r)}
}

type pylintSource struct {
	lr *lineReader
}

func (s *pylintSource) Name() string {
	return s.lr.name()
}

func (s *pylintSource) Next() (schema.DefectRecord, error) {
	for {
		line, err := s.lr.nextLine()
		if err != nil {
			return schema.DefectRecord{}, err
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || isPylintNoise(trimmed) {
			continue
		}
		return s.parseFinding(line)
	}
}

// parseFinding turns one pylint message line into a defect record.
func (s *pylintSource) parseFinding(line string) (schema.DefectRecord, error) {
	parts := strings.SplitN(line, ":", 3)
	if len(parts) < 3 {
		return schema.DefectRecord{}, s.lr.fail("expected path:line: message line")
	}
	path := strings.TrimSpace(parts[0])
	if path == "" {
		return schema.DefectRecord{}, s.lr.fail("empty source path")
	}
	lineno, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || lineno < 0 {
		return schema.DefectRecord{}, s.lr.fail("bad line number " + strconv.Quote(strings.TrimSpace(parts[1])))
	}
	rest := strings.TrimSpace(parts[2])
	var kind, message string
	var ok bool
	if strings.HasPrefix(rest, "[") {
		kind, message, ok = parseLegacyPylintMessage(rest)
		if !ok {
			return schema.DefectRecord{}, s.lr.fail("malformed [code] message")
		}
	} else {
		kind, message, ok = parseModernPylintMessage(rest)
		if !ok {
			return schema.DefectRecord{}, s.lr.fail("expected column: code: message")
		}
	}
	return schema.DefectRecord{
		Analyzer: "pylint",
		File:     path,
		Line:     lineno,
		Kind:     kind,
		Message:  message,
	}, nil
}

// parseModernPylintMessage splits "column: code: message (symbol)" into a
// kind and message. The symbolic name is preferred over the numeric code
// when the message carries one.
func parseModernPylintMessage(rest string) (string, string, bool) {
	parts := strings.SplitN(rest, ":", 3)
	if len(parts) < 3 {
		return "", "", false
	}
	if _, err := strconv.Atoi(strings.TrimSpace(parts[0])); err != nil {
		return "", "", false
	}
	code := strings.TrimSpace(parts[1])
	if code == "" || strings.ContainsAny(code, " \t") {
		return "", "", false
	}
	message := strings.TrimSpace(parts[2])
	if symbol, stripped, found := cutSymbolSuffix(message); found {
		return symbol, stripped, true
	}
	return code, message, true
}

// parseLegacyPylintMessage splits "[code(symbol), obj] message" into a
// kind and message.
func parseLegacyPylintMessage(rest string) (string, string, bool) {
	end := strings.Index(rest, "]")
	if end < 0 {
		return "", "", false
	}
	bracket := rest[1:end]
	if comma := strings.Index(bracket, ","); comma >= 0 {
		bracket = bracket[:comma]
	}
	bracket = strings.TrimSpace(bracket)
	kind := bracket
	if open := strings.Index(bracket, "("); open >= 0 && strings.HasSuffix(bracket, ")") {
		if symbol := bracket[open+1 : len(bracket)-1]; isSymbolName(symbol) {
			kind = symbol
		} else {
			kind = bracket[:open]
		}
	}
	if kind == "" {
		return "", "", false
	}
	return kind, strings.TrimSpace(rest[end+1:]), true
}

// cutSymbolSuffix detects the trailing " (symbolic-name)" pylint appends
// to messages. A lowercase parenthesized tail is taken as the symbol.
func cutSymbolSuffix(message string) (string, string, bool) {
	if !strings.HasSuffix(message, ")") {
		return "", "", false
	}
	idx := strings.LastIndex(message, " (")
	if idx < 0 {
		return "", "", false
	}
	symbol := message[idx+2 : len(message)-1]
	if !isSymbolName(symbol) {
		return "", "", false
	}
	return symbol, message[:idx], true
}

// isSymbolName reports whether a string looks like a pylint symbolic
// message name such as unused-variable.
func isSymbolName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return false
		}
	}
	return true
}

// isPylintNoise matches the non-finding lines of a pylint text report.
func isPylintNoise(trimmed string) bool {
	return strings.HasPrefix(trimmed, "*************") ||
		strings.HasPrefix(trimmed, "----") ||
		strings.HasPrefix(trimmed, "Your code has been rated")
}
