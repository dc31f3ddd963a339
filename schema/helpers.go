package schema

import (
	"strconv"
	"strings"
)

// CanonicalizeAuthor trims whitespace from a raw author identity and applies
// the configured alias map, so that the same person contributing under
// multiple identities aggregates as one author. Lookup is exact match after
// trimming; an empty alias map leaves identities untouched.
func CanonicalizeAuthor(name string, aliases map[string]string) string {
	trimmed := strings.TrimSpace(name)
	if canonical, ok := aliases[trimmed]; ok {
		return canonical
	}
	return trimmed
}

// RoundTo rounds a value to the given number of decimal places by formatting
// and re-parsing, so serialized floats carry no platform-dependent digits.
func RoundTo(value float64, precision int) float64 {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(value, 'f', precision, 64), 64)
	if err != nil {
		return value
	}
	return rounded
}

// Percent returns part as a percentage of whole, or zero when whole is zero.
func Percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
