package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeAuthor(t *testing.T) {
	aliases := map[string]string{
		"alice.smith": "Alice Smith",
		"asmith":      "Alice Smith",
		"bob":         "Robert Jones",
	}

	tests := []struct {
		name string
		want string
	}{
		// Alias hits
		{"alice.smith", "Alice Smith"}, // mapped login
		{"asmith", "Alice Smith"},      // second identity, same person
		{"  bob  ", "Robert Jones"},    // alias applies after trimming

		// Pass-through
		{"Carol White", "Carol White"}, // no alias configured
		{"  Dave  ", "Dave"},           // trimmed but unmapped
		{"", ""},                       // empty identity stays empty
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanonicalizeAuthor(tt.name, aliases)
			assert.Equal(t, tt.want, got, "CanonicalizeAuthor(%q) should match expected result", tt.name)
		})
	}
}

func TestCanonicalizeAuthorNilAliases(t *testing.T) {
	assert.Equal(t, "Alice", CanonicalizeAuthor(" Alice ", nil))
}

func TestRoundTo(t *testing.T) {
	tests := []struct {
		name      string
		value     float64
		precision int
		want      float64
	}{
		{"RoundsDown", 33.3333333, 1, 33.3},
		{"RoundsUp", 66.6666666, 1, 66.7},
		{"TwoDecimals", 12.346, 2, 12.35},
		{"ZeroPrecision", 49.9, 0, 50},
		{"AlreadyExact", 25.0, 1, 25.0},
		{"Zero", 0.0, 3, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundTo(tt.value, tt.precision)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestPercent(t *testing.T) {
	assert.InDelta(t, 50.0, Percent(1, 2), 1e-9)
	assert.InDelta(t, 100.0, Percent(3, 3), 1e-9)

	// Zero whole must not divide.
	assert.Zero(t, Percent(5, 0))
}
