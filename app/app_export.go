package app

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wailsapp/wails/v2/pkg/runtime"
	clipboard "golang.design/x/clipboard"

	"observatory/app/columns"
	"observatory/app/fileloader"
	"observatory/app/table"
)

// Maximum clipboard size in bytes (10MB) - helps avoid X11 BadLength errors on Linux
const maxClipboardSize = 10 * 1024 * 1024

// safeClipboardWrite attempts to write data to clipboard with panic recovery.
// Returns an error if the write fails or data is too large.
func safeClipboardWrite(format clipboard.Format, data []byte) (err error) {
	if len(data) > maxClipboardSize {
		return fmt.Errorf("data too large for clipboard (%d bytes, max %d bytes / %.1f MB). Try a smaller page size",
			len(data), maxClipboardSize, float64(maxClipboardSize)/(1024*1024))
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("clipboard write failed: %v", r)
		}
	}()

	clipboard.Write(format, data)
	return nil
}

// initClipboard lazily initialises the system clipboard
func (a *App) initClipboard() error {
	a.clipOnce.Do(func() {
		if err := clipboard.Init(); err == nil {
			a.clipOK = true
		} else {
			a.clipOK = false
			a.Log("error", fmt.Sprintf("Clipboard init failed: %v", err))
		}
	})
	if !a.clipOK {
		return fmt.Errorf("clipboard not available")
	}
	return nil
}

// visibleColumns resolves the visible column keys of an engine in order
func visibleColumns(e *table.Engine) []*columns.Column {
	reg := e.Columns()
	keys := e.State().VisibleColumns
	out := make([]*columns.Column, 0, len(keys))
	for _, k := range keys {
		if col, ok := reg.Get(k); ok {
			out = append(out, col)
		}
	}
	return out
}

// pageTSV renders the current page of a table as tab separated formatted
// values of the visible columns, with a header line of column labels.
func (a *App) pageTSV(tableID string) (string, int, error) {
	sess, err := a.session(tableID)
	if err != nil {
		return "", 0, err
	}
	res, err := sess.engine.Derive(a.baseContext())
	if err != nil {
		return "", 0, err
	}
	return fileloader.FormatTSV(visibleColumns(sess.engine), res.Rows, true), len(res.Rows), nil
}

// CopyPageToClipboard copies the current page of a table as TSV
func (a *App) CopyPageToClipboard(tableID string) (*CopyResult, error) {
	text, n, err := a.pageTSV(tableID)
	if err != nil {
		return nil, err
	}
	if err := a.initClipboard(); err != nil {
		return nil, err
	}
	if err := safeClipboardWrite(clipboard.FmtText, []byte(text)); err != nil {
		return nil, err
	}
	a.Log("info", fmt.Sprintf("Copied %d rows to clipboard", n))
	return &CopyResult{RowsCopied: n}, nil
}

// ExportTable writes every row passing the table's filters, in sort order,
// to path. The visible columns are exported; .xlsx selects a workbook and
// anything else CSV. formatted exports rendered text with column labels,
// otherwise raw values with column keys.
func (a *App) ExportTable(tableID, path string, formatted bool) (*ExportResult, error) {
	sess, err := a.session(tableID)
	if err != nil {
		return nil, err
	}
	rows, err := sess.engine.Filtered(a.baseContext())
	if err != nil {
		return nil, err
	}
	if err := fileloader.Export(path, visibleColumns(sess.engine), rows, formatted); err != nil {
		a.Log("error", fmt.Sprintf("Export to %s failed: %v", path, err))
		return nil, err
	}
	a.Log("info", fmt.Sprintf("Exported %d rows to %s", len(rows), filepath.Base(path)))
	return &ExportResult{Path: path, RowsExported: len(rows)}, nil
}

// ExportTableWithDialog asks for a destination and exports the table there.
// A cancelled dialog returns nil without error.
func (a *App) ExportTableWithDialog(tableID string, formatted bool) (*ExportResult, error) {
	sess, err := a.session(tableID)
	if err != nil {
		return nil, err
	}
	path, err := runtime.SaveFileDialog(a.ctx, runtime.SaveDialogOptions{
		Title:           "Export Table",
		DefaultFilename: sess.Story.ID + ".csv",
		Filters: []runtime.FileFilter{
			{DisplayName: "CSV", Pattern: "*.csv"},
			{DisplayName: "Excel Workbook", Pattern: "*.xlsx"},
		},
	})
	if err != nil {
		return nil, err
	}
	if path == "" {
		// user cancelled
		return nil, nil
	}
	return a.ExportTable(tableID, path, formatted)
}

// OpenExportFileDialog asks for a telemetry export to open as a story
func (a *App) OpenExportFileDialog() (string, error) {
	patterns := []string{
		"*.csv", "*.tsv", "*.json", "*.jsonl", "*.ndjson", "*.xlsx",
		"*.gz", "*.bz2", "*.xz",
	}
	return runtime.OpenFileDialog(a.ctx, runtime.OpenDialogOptions{
		Title: "Open Telemetry Export",
		Filters: []runtime.FileFilter{
			{DisplayName: "All Supported Files", Pattern: strings.Join(patterns, ";")},
		},
	})
}

// OpenDirectoryDialog asks for a directory of telemetry exports
func (a *App) OpenDirectoryDialog() (string, error) {
	return runtime.OpenDirectoryDialog(a.ctx, runtime.OpenDialogOptions{
		Title: "Open Export Directory",
	})
}

// DefaultFilePattern returns the glob used for directories when the caller
// does not give one.
func (a *App) DefaultFilePattern() string {
	return fileloader.DefaultFilePattern
}

func decodePNGDataURL(dataURL string) ([]byte, error) {
	if strings.TrimSpace(dataURL) == "" {
		return nil, fmt.Errorf("empty data URL")
	}
	comma := strings.Index(dataURL, ",")
	if comma < 0 {
		return nil, fmt.Errorf("invalid data URL: no comma separator")
	}
	img, err := base64.StdEncoding.DecodeString(strings.TrimSpace(dataURL[comma+1:]))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image base64: %w", err)
	}
	return img, nil
}

// CopyChartPNG puts a chart screenshot ("data:image/png;base64,...") on the
// system clipboard.
func (a *App) CopyChartPNG(dataURL string) (bool, error) {
	img, err := decodePNGDataURL(dataURL)
	if err != nil {
		return false, err
	}
	if err := a.initClipboard(); err != nil {
		return false, err
	}
	if err := safeClipboardWrite(clipboard.FmtImage, img); err != nil {
		return false, err
	}
	return true, nil
}

// SaveChartPNG asks for a destination and writes a chart screenshot there.
// Returns false when the dialog was cancelled.
func (a *App) SaveChartPNG(dataURL, defaultName string) (bool, error) {
	img, err := decodePNGDataURL(dataURL)
	if err != nil {
		return false, err
	}
	path, err := runtime.SaveFileDialog(a.ctx, runtime.SaveDialogOptions{
		Title:           "Save Chart Screenshot",
		DefaultFilename: strings.TrimSpace(defaultName),
		Filters:         []runtime.FileFilter{{DisplayName: "PNG Image", Pattern: "*.png"}},
	})
	if err != nil {
		return false, err
	}
	if path == "" {
		return false, nil
	}
	if !strings.HasSuffix(strings.ToLower(path), ".png") {
		path = path + ".png"
	}
	if err := os.WriteFile(path, img, 0o644); err != nil {
		return false, err
	}
	a.Log("info", fmt.Sprintf("Saved chart screenshot to %s", filepath.Base(path)))
	return true, nil
}
