package io

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/timenexus/timenexus/pkg/errors"
	"github.com/timenexus/timenexus/pkg/graph"
)

// ReadCSV reads a header line and the rows that follow it. Rows may be
// shorter or longer than the header.
func ReadCSV(r io.Reader, delim rune) ([]string, [][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "Invalid table",
			"The table cannot be read: %v", err)
	}
	if len(records) == 0 {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "Invalid table", "The table has no header.")
	}
	return records[0], records[1:], nil
}

// ReadCSVFile reads the CSV table at path.
func ReadCSVFile(path string, delim rune) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "Invalid table",
			"The table %s cannot be opened.", path)
	}
	defer f.Close()
	return ReadCSV(f, delim)
}

// WriteTableCSV writes t as CSV: a header of column names, then one line
// per row. The first column holds the row key. Null cells are empty and
// list cells are written as JSON arrays.
func WriteTableCSV(t *graph.Table, w io.Writer) error {
	cw := csv.NewWriter(w)
	cols := t.Columns()
	header := make([]string, 0, len(cols)+1)
	header = append(header, "row")
	for _, c := range cols {
		header = append(header, c.Name)
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	record := make([]string, len(header))
	for _, row := range t.Rows() {
		record[0] = strconv.FormatInt(row, 10)
		for j, c := range cols {
			cell, err := formatCell(t.Get(row, c.Name))
			if err != nil {
				return fmt.Errorf("row %d, column %s: %w", row, c.Name, err)
			}
			record[j+1] = cell
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCell(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case int:
		return strconv.Itoa(x), nil
	case bool:
		return strconv.FormatBool(x), nil
	}
	b, err := json.Marshal(v)
	return string(b), err
}
