package exporter

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"ugbmonitor/internal/dataset"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes the header row followed by every record of t.
func WriteCSV(w io.Writer, t *dataset.Table, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, record := range t.Rows {
		if err := writer.Write(fitRow(record, len(t.Columns))); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadCSV reads a table written by WriteCSV. A leading BOM is ignored,
// short records are padded and every cell stays a string. Empty input
// yields an empty table.
func ReadCSV(r io.Reader) (*dataset.Table, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return dataset.Empty(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	t := dataset.New(header...)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record on line %d: %w", line, err)
		}
		t.Append(fitRow(record, len(header)))
	}
	return t, nil
}

func fitRow(r []string, n int) []string {
	if len(r) == n {
		return r
	}
	out := make([]string, n)
	copy(out, r)
	return out
}
