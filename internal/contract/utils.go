package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/culprit/schema"
)

// Defect load label constants.
const (
	CriticalValue = "Critical" // Critical value
	HighValue     = "High"     // High value
	ModerateValue = "Moderate" // Moderate value
	LowValue      = "Low"      // Low value
)

// Color variables for console output.
var (
	CriticalColor = color.New(color.FgRed, color.Bold)     // criticalColor represents standard danger.
	HighColor     = color.New(color.FgMagenta, color.Bold) // highColor represents strong, distinct warning.
	ModerateColor = color.New(color.FgYellow)              // moderateColor represents standard caution, not bold.
	LowColor      = color.New(color.FgCyan)                // lowColor represents informational / low-priority signal.
)

// GetColorLabel returns a colored text label for console output (table).
// It uses schema.GetPlainLabel to determine the string, and then applies the
// appropriate color.
func GetColorLabel(share float64) string {
	text := schema.GetPlainLabel(share)

	switch text {
	case CriticalValue:
		return CriticalColor.Sprint(text)
	case HighValue:
		return HighColor.Sprint(text)
	case ModerateValue:
		return ModerateColor.Sprint(text)
	default: // "Low"
		return LowColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on
// the provided file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// LogRunHeader prints a concise, 2-line header for an attribution run.
// It writes to stderr so piped raw or summary output stays clean.
func LogRunHeader(cfg *Config) {
	analyzerCount, repoCount := 0, 0
	for _, in := range cfg.Analyzers {
		analyzerCount += len(in.Files)
	}
	for _, in := range cfg.Repos {
		repoCount += len(in.Files)
	}

	if cfg.UseEmojis {
		_, _ = fmt.Fprintf(os.Stderr, "🔎 Attributing %d analyzer file(s) against %d blame file(s)\n", analyzerCount, repoCount)
		_, _ = fmt.Fprintf(os.Stderr, "📅 Run: %s\n", time.Now().Format(DateTimeFormat))
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "Attributing %d analyzer file(s) against %d blame file(s)\n", analyzerCount, repoCount)
		_, _ = fmt.Fprintf(os.Stderr, "Run: %s\n", time.Now().Format(DateTimeFormat))
	}
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for run history storage.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".culprit_history.db"
	}
	return filepath.Join(homeDir, ".culprit_history.db")
}

// NormalizeSourcePath canonicalizes a reported source path into the form
// used as a blame index key, so a defect at "src/foo.py" and a blame line at
// "./src/foo.py" correlate. Backslashes become forward slashes, runs of
// separators collapse into one, and leading "./" segments are dropped. Case
// is preserved and ".." segments are left alone; the key never resolves
// beyond what the tools reported. An optional prefix is stripped after
// receiving the same treatment.
func NormalizeSourcePath(path, prefix string) string {
	normalized := trimDotSlash(collapseSeparators(path))
	if prefix != "" {
		cleaned := trimDotSlash(collapseSeparators(prefix))
		normalized = strings.TrimPrefix(normalized, cleaned)
		normalized = strings.TrimPrefix(normalized, "/")
		normalized = trimDotSlash(normalized)
	}
	return normalized
}

var (
	tsvEscaper   = strings.NewReplacer("\t", `\t`, "\n", `\n`)
	tsvUnescaper = strings.NewReplacer(`\t`, "\t", `\n`, "\n")
)

// EscapeTSVField replaces literal tabs and newlines with two-character
// escapes so a field fits on one tab-separated line. No other characters
// are quoted.
func EscapeTSVField(field string) string {
	return tsvEscaper.Replace(field)
}

// UnescapeTSVField reverses EscapeTSVField.
func UnescapeTSVField(field string) string {
	return tsvUnescaper.Replace(field)
}

// collapseSeparators converts backslashes to forward slashes and collapses
// repeated separators into one.
func collapseSeparators(path string) string {
	slashed := strings.ReplaceAll(path, "\\", "/")
	for strings.Contains(slashed, "//") {
		slashed = strings.ReplaceAll(slashed, "//", "/")
	}
	return slashed
}

// trimDotSlash removes repeated leading "./" segments.
func trimDotSlash(path string) string {
	for strings.HasPrefix(path, "./") {
		path = path[2:]
	}
	return path
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to ensure there's space for both the "..." prefix and at least one character of content.
// Without this check, small maxWidth values could cause slice bounds errors in the truncation calculation.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
