package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/culprit/internal/contract"
	"github.com/huangsam/culprit/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// writeSummaryTable generates and writes the human-readable author table.
func writeSummaryTable(summary *schema.Summary, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	// 1. Define Headers
	headers := []string{"Author", "Defects", "Share", "Label", "Top Kinds"}
	table.Header(headers)

	// 2. Configure Separators/Borders to match a minimal look
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	maxKindsWidth := getMaxKindsWidth(cfg)
	var data [][]string
	for _, a := range summary.Authors {
		row := []string{
			a.Author,
			strconv.Itoa(a.Total),
			fmtFloat(a.Share),
			contract.GetColorLabel(a.Share),
			truncateCell(formatTopKinds(a.Kinds), maxKindsWidth),
		}
		data = append(data, row)
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Attributed %d of %d defects (%d unattributed)\n", summary.Attributed, summary.Total, summary.Unattributed); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Attribution completed in %v. History backend: %s\n", duration, cfg.HistoryBackend); err != nil {
		return err
	}
	return nil
}

// writeSummaryCSV writes one row per author and kind, so spreadsheet
// pivots can regroup the counts without parsing nested structures.
func writeSummaryCSV(summary *schema.Summary, fmtFloat func(float64) string, w io.Writer) error {
	header := []string{
		"author",
		"kind",
		"count",
		"author_total",
		"share",
		"label",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, a := range summary.Authors {
			for _, k := range a.Kinds {
				rec := []string{
					a.Author,
					k.Name,
					strconv.Itoa(k.Count),
					strconv.Itoa(a.Total),
					fmtFloat(a.Share),
					schema.GetPlainLabel(a.Share),
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
