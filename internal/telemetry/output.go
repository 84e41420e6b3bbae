package telemetry

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

// CSVWriter appends Stats rows to w, writing the header with the first batch.
type CSVWriter struct {
	w             io.Writer
	headerWritten bool
}

func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: w}
}

// Write flushes records to the underlying writer.
func (cw *CSVWriter) Write(records []Stats) error {
	if len(records) == 0 {
		return nil
	}
	if !cw.headerWritten {
		if err := gocsv.Marshal(records, cw.w); err != nil {
			return fmt.Errorf("writing telemetry: %w", err)
		}
		cw.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, cw.w); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}
