package fileloader

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"observatory/app/columns"
	"observatory/app/interfaces"
	"observatory/app/values"
)

const exportSheet = "Calls"

// cellText renders a cell for text output. Formatted output uses the column
// formatter; raw output keeps values re-importable.
func cellText(col *columns.Column, v any, formatted bool) string {
	if formatted {
		return col.Format(v)
	}
	return values.String(v)
}

// headerText uses labels for formatted output and keys for raw output so a
// raw export loads back into the same columns.
func headerText(cols []*columns.Column, formatted bool) []string {
	header := make([]string, len(cols))
	for i, col := range cols {
		if formatted {
			header[i] = col.Label
		} else {
			header[i] = col.Key
		}
	}
	return header
}

// Export writes rows restricted to cols. The format follows the extension:
// .xlsx writes a workbook, anything else writes CSV.
func Export(path string, cols []*columns.Column, rows []interfaces.Row, formatted bool) error {
	if strings.TrimSpace(path) == "" {
		return ErrEmptyPath
	}
	if GetUncompressedExtension(path) == ".xlsx" {
		return exportXLSX(path, cols, rows, formatted)
	}
	return exportCSV(path, cols, rows, formatted)
}

func exportCSV(path string, cols []*columns.Column, rows []interfaces.Row, formatted bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(headerText(cols, formatted)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	record := make([]string, len(cols))
	for _, row := range rows {
		for i, col := range cols {
			record[i] = cellText(col, row[col.Key], formatted)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush export: %w", err)
	}
	return f.Close()
}

func exportXLSX(path string, cols []*columns.Column, rows []interfaces.Row, formatted bool) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := headerText(cols, formatted)
	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for r, row := range rows {
		cells := make([]any, len(cols))
		for i, col := range cols {
			cells[i] = xlsxCell(col, row[col.Key], formatted)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// xlsxCell keeps numbers and booleans native in raw workbooks
func xlsxCell(col *columns.Column, v any, formatted bool) any {
	if formatted {
		return col.Format(v)
	}
	if values.IsNil(v) {
		return nil
	}
	switch t := v.(type) {
	case bool, string:
		return t
	case time.Time:
		return t.Format(time.RFC3339Nano)
	}
	if f, ok := values.Number(v); ok {
		return f
	}
	return values.String(v)
}

// FormatTSV renders rows as tab separated text for the clipboard. Tabs and
// line breaks inside cells become spaces.
func FormatTSV(cols []*columns.Column, rows []interfaces.Row, formatted bool) string {
	sanitize := strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")

	var b strings.Builder
	for i, h := range headerText(cols, formatted) {
		if i > 0 {
			b.WriteByte('\t')
		}
		b.WriteString(sanitize.Replace(h))
	}
	b.WriteByte('\n')
	for _, row := range rows {
		for i, col := range cols {
			if i > 0 {
				b.WriteByte('\t')
			}
			b.WriteString(sanitize.Replace(cellText(col, row[col.Key], formatted)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
