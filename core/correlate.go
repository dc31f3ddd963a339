package core

import (
	"fmt"
	"io"

	"github.com/huangsam/culprit/internal/contract"
	"github.com/huangsam/culprit/schema"
)

// DefectInput pairs an open defect source with its path prefix sub-option.
type DefectInput struct {
	Source contract.DefectSource // Stream of defect records
	Prefix string                // Prefix stripped from reported paths
}

// Warning records a defect no blame index could cover. Warnings never
// fail a run, they are reported after the output is written.
type Warning struct {
	Source string // Defect source that produced the record
	File   string // File path as the analyzer reported it
	Line   int    // Reported line number
}

func (w Warning) Error() string {
	return fmt.Sprintf("%s:%d from %s", w.File, w.Line, w.Source)
}

// Correlation joins defect streams against blame indexes lazily. Records
// come out in defect input order, exactly one attributed record per
// defect, with io.EOF after the last one.
type Correlation struct {
	inputs   []DefectInput
	indexes  []*BlameIndex
	pos      int
	warnings []Warning
}

// Correlate prepares the correlation of defect inputs against blame
// indexes. Nothing is read until Next is called.
func Correlate(defects []DefectInput, indexes []*BlameIndex) *Correlation {
	return &Correlation{inputs: defects, indexes: indexes}
}

// Next pulls one defect and attributes it. Adapter errors pass through
// unchanged and end the stream.
func (c *Correlation) Next() (schema.AttributedRecord, error) {
	for c.pos < len(c.inputs) {
		rec, err := c.inputs[c.pos].Source.Next()
		if err == io.EOF {
			c.pos++
			continue
		}
		if err != nil {
			return schema.AttributedRecord{}, err
		}
		return c.attribute(c.inputs[c.pos], rec), nil
	}
	return schema.AttributedRecord{}, io.EOF
}

// attribute looks one defect up across the indexes in order and takes
// the first hit.
func (c *Correlation) attribute(input DefectInput, rec schema.DefectRecord) schema.AttributedRecord {
	out := schema.AttributedRecord{DefectRecord: rec, Author: schema.Unattributed}
	if rec.Line <= 0 {
		// File-level findings have no line a blame entry could cover,
		// so they stay unattributed without a warning.
		return out
	}
	if len(c.indexes) == 0 {
		// Without any blame input, unattributed output is the expected
		// result and warnings would only be noise.
		return out
	}
	file := contract.NormalizeSourcePath(rec.File, input.Prefix)
	for _, index := range c.indexes {
		blame, ok := index.Lookup(file, rec.Line)
		if !ok {
			continue
		}
		out.Matched = true
		out.Revision = blame.Revision
		if blame.Author != "" {
			out.Author = blame.Author
		}
		return out
	}
	c.warnings = append(c.warnings, Warning{Source: input.Source.Name(), File: rec.File, Line: rec.Line})
	return out
}

// Warnings returns the unattributable defects seen so far in stream
// order. Drain the stream first to get the full run.
func (c *Correlation) Warnings() []Warning {
	return c.warnings
}
