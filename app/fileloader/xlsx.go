package fileloader

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"observatory/app/interfaces"
)

// parseXLSX reads the first sheet of a workbook into rows keyed by the
// normalized header.
func parseXLSX(data []byte, noHeader bool) ([]string, []interfaces.Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("no sheets found in XLSX file")
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return []string{}, []interfaces.Row{}, nil
	}

	width := 0
	for _, r := range records {
		width = max(width, len(r))
	}

	var header []string
	if noHeader {
		header = syntheticHeaders(width)
	} else {
		first := records[0]
		if len(first) < width {
			first = append(first, make([]string, width-len(first))...)
		}
		header = NormalizeHeaders(first)
		records = records[1:]
	}

	rows := make([]interfaces.Row, 0, len(records))
	for _, record := range records {
		rows = append(rows, recordToRow(header, record))
	}
	return header, rows, nil
}
