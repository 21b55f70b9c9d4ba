package tables

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// EncodeCSV writes the header followed by every row as UTF-8, comma separated CSV.
func EncodeCSV(t Table) ([]byte, error) {
	var buffer bytes.Buffer
	writer := csv.NewWriter(&buffer)

	err := writer.Write(t.Columns)
	if err != nil {
		return nil, err
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return nil, fmt.Errorf("table %s: row %d has %d cells, expected %d", t.Name, i, len(row), len(t.Columns))
		}
		err = writer.Write(row)
		if err != nil {
			return nil, err
		}
	}
	writer.Flush()
	return buffer.Bytes(), writer.Error()
}

// DecodeCSV reads a CSV with a header row and returns only the requested
// columns, in the requested order. A missing column is an error.
func DecodeCSV(name string, data []byte, columns []string) (Table, error) {
	// tolerate files written with a byte order mark
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("table %s: %w", name, err)
	}
	if len(records) == 0 {
		return Table{}, fmt.Errorf("table %s: missing header", name)
	}

	header := map[string]int{}
	for i, col := range records[0] {
		header[col] = i
	}
	indices := make([]int, len(columns))
	for i, col := range columns {
		idx, ok := header[col]
		if !ok {
			return Table{}, fmt.Errorf("table %s: missing column %s", name, col)
		}
		indices[i] = idx
	}

	out := Table{Name: name, Columns: columns, Rows: make([][]string, 0, len(records)-1)}
	for _, record := range records[1:] {
		row := make([]string, len(columns))
		for i, idx := range indices {
			if idx < len(record) {
				row[i] = record[idx]
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// HasColumn reports whether the CSV header in `data` contains `column`.
func HasColumn(data []byte, column string) bool {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	reader := csv.NewReader(bytes.NewReader(data))
	header, err := reader.Read()
	if err != nil {
		return false
	}
	for _, col := range header {
		if col == column {
			return true
		}
	}
	return false
}
