package fileloader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"observatory/app/interfaces"
)

// parseCSV reads delimited text into rows keyed by the normalized header.
// When noHeader is set the first record is data and headers are synthetic.
func parseCSV(data []byte, comma rune, noHeader bool) ([]string, []interfaces.Row, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = false

	first, err := reader.Read()
	if err == io.EOF {
		return []string{}, []interfaces.Row{}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var header []string
	var rows []interfaces.Row
	if noHeader {
		header = syntheticHeaders(len(first))
		rows = append(rows, recordToRow(header, first))
	} else {
		header = NormalizeHeaders(first)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read CSV record %d: %w", len(rows)+1, err)
		}
		if len(record) > len(header) {
			header = append(header, syntheticHeaders(len(record))[len(header):]...)
		}
		rows = append(rows, recordToRow(header, record))
	}
	if rows == nil {
		rows = []interfaces.Row{}
	}
	return header, rows, nil
}

// recordToRow maps a record onto header keys. Missing trailing cells are absent.
func recordToRow(header, record []string) interfaces.Row {
	row := make(interfaces.Row, len(record))
	for i, cell := range record {
		if i >= len(header) {
			break
		}
		row[header[i]] = cell
	}
	return row
}
