package outwriter

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/culprit/internal/contract"
	"github.com/huangsam/culprit/schema"
)

// writeRawTSV writes one header line and one tab-separated line per
// attributed record, pulling from the stream so records flow out as they
// are correlated. Field values are escaped with the same two-character
// escapes the lines adapter reverses on ingest.
func writeRawTSV(stream contract.AttributedStream, w io.Writer) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(strings.Join(schema.RawColumns, "\t") + "\n"); err != nil {
		return err
	}
	for {
		rec, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if _, err := bw.WriteString(formatRawLine(rec)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// formatRawLine renders one record as a raw output line, columns in
// schema.RawColumns order.
func formatRawLine(rec schema.AttributedRecord) string {
	fields := []string{
		contract.EscapeTSVField(rec.Analyzer),
		contract.EscapeTSVField(rec.File),
		strconv.Itoa(rec.Line),
		contract.EscapeTSVField(rec.Kind),
		contract.EscapeTSVField(rec.Message),
		contract.EscapeTSVField(rec.Author),
		contract.EscapeTSVField(rec.Revision),
		strconv.FormatBool(rec.Matched),
	}
	return strings.Join(fields, "\t") + "\n"
}
