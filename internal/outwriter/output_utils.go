package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/huangsam/culprit/internal/contract"
	"github.com/huangsam/culprit/schema"
	"gopkg.in/yaml.v3"
)

// topNKinds bounds how many kinds the table's breakdown column shows.
const topNKinds = 3

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(cfg *contract.Config, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(cfg.OutputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		notifyFileWritten(cfg, successMsg)
	}
	return nil
}

// notifyFileWritten tells the user on stderr where results landed, so the
// notice never mixes into piped output.
func notifyFileWritten(cfg *contract.Config, successMsg string) {
	if cfg.UseEmojis {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, cfg.OutputFile)
	} else {
		fmt.Fprintf(os.Stderr, "%s to %s\n", successMsg, cfg.OutputFile)
	}
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeYAML is a generic YAML encoder that handles indentation consistently.
func writeYAML(w io.Writer, data any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		_ = encoder.Close()
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	if err := writeRows(csvWriter); err != nil {
		return err
	}

	return nil
}

// createFormatters creates the common formatter closures used across multiple output types.
func createFormatters(precision int) func(float64) string {
	numFmt := "%.*f"
	return func(v float64) string {
		return fmt.Sprintf(numFmt, precision, v)
	}
}

// formatTopKinds renders an author's heaviest defect kinds as
// "kind:count" pairs, highest count first with name breaking ties.
func formatTopKinds(kinds []schema.NameCount) string {
	if len(kinds) == 0 {
		return "-"
	}

	// Kinds arrive sorted by name, so a stable sort by count keeps
	// name order within equal counts.
	ordered := make([]schema.NameCount, len(kinds))
	copy(ordered, kinds)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Count > ordered[j].Count
	})

	limit := min(len(ordered), topNKinds)
	parts := make([]string, 0, limit)
	for i := range limit {
		parts = append(parts, fmt.Sprintf("%s:%d", ordered[i].Name, ordered[i].Count))
	}
	return strings.Join(parts, ", ")
}

// truncateCell trims a table cell to a maximum width with ellipsis suffix.
// The leading characters carry the signal here, so unlike path truncation
// the tail is what gets dropped.
func truncateCell(cell string, maxWidth int) string {
	runes := []rune(cell)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return cell
}
