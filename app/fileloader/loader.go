package fileloader

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"observatory/app/cache"
	"observatory/app/columns"
	"observatory/app/interfaces"
	"observatory/app/timestamps"
)

// Loader reads exports into rows typed by a column registry.
// Parsed results are kept in the base data cache until the file changes.
type Loader struct {
	cols     *columns.Registry
	cache    *cache.Cache
	loc      *time.Location
	maxFiles int
}

// NewLoader creates a loader. c may be nil to disable caching; loc is the
// timezone for timestamps without an explicit offset.
func NewLoader(cols *columns.Registry, c *cache.Cache, loc *time.Location) *Loader {
	if loc == nil {
		loc = time.UTC
	}
	return &Loader{cols: cols, cache: c, loc: loc}
}

// SetMaxFiles limits how many files a directory load may read; 0 is unlimited
func (l *Loader) SetMaxFiles(n int) {
	l.maxFiles = n
}

func baseDataKey(path string, opts interfaces.SourceOptions) string {
	return "file:" + path + "::" + opts.Key()
}

// Load reads a file, or every matching file of a directory, into rows
func (l *Loader) Load(ctx context.Context, path string, opts interfaces.SourceOptions) (*Result, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrEmptyPath
	}

	// A directory's mtime does not follow edits to its files, so only single
	// files are cached
	dir := opts.IsDirectory || IsDirectory(path)
	key := baseDataKey(path, opts)
	if l.cache != nil && !dir {
		if entry, ok := l.cache.GetBaseData(key, path); ok {
			slog.Debug("export loaded from cache", "path", path, "rows", len(entry.Rows))
			return &Result{Columns: entry.Columns, Rows: entry.Rows, Files: 1}, nil
		}
	}

	loc := l.loc
	if opts.IngestTimezoneOverride != "" {
		loc = timestamps.GetLocationForTZ(opts.IngestTimezoneOverride)
	}

	var res *Result
	var err error
	if dir {
		res, err = l.loadDirectory(ctx, path, opts)
	} else {
		res, err = loadFile(path, opts)
	}
	if err != nil {
		return nil, err
	}

	Coerce(res.Rows, l.cols, loc)
	if l.cache != nil && !dir && res.Warning == "" {
		l.cache.StoreBaseData(key, path, res.Columns, res.Rows)
	}
	slog.Debug("export loaded", "path", path, "files", res.Files, "rows", len(res.Rows))
	return res, nil
}

// loadFile parses a single export by its detected type
func loadFile(path string, opts interfaces.SourceOptions) (*Result, error) {
	data, warning, err := readSource(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}

	var header []string
	var rows []interfaces.Row
	switch ft := DetectFileType(path, data); ft {
	case FileTypeCSV:
		comma := ','
		if GetUncompressedExtension(path) == ".tsv" {
			comma = '\t'
		}
		header, rows, err = parseCSV(data, comma, opts.NoHeaderRow)
	case FileTypeXLSX:
		header, rows, err = parseXLSX(data, opts.NoHeaderRow)
	case FileTypeJSON:
		header, rows, err = parseJSON(data, opts.JPath)
	case FileTypeNDJSON:
		header, rows, err = parseNDJSON(data)
	default:
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	return &Result{Columns: header, Rows: rows, Files: 1, Warning: warning}, nil
}

// loadDirectory concatenates every matching file. Columns are the union of
// all file headers in order of first appearance.
func (l *Loader) loadDirectory(ctx context.Context, dir string, opts interfaces.SourceOptions) (*Result, error) {
	files, err := DiscoverFiles(dir, opts.FilePattern)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoFiles)
	}
	if l.maxFiles > 0 && len(files) > l.maxFiles {
		return nil, fmt.Errorf("%d files under %s, limit is %d: %w", len(files), dir, l.maxFiles, ErrTooManyFiles)
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	res := &Result{Columns: []string{}, Rows: []interfaces.Row{}}
	seen := map[string]bool{}
	addColumn := func(c string) {
		if !seen[c] {
			seen[c] = true
			res.Columns = append(res.Columns, c)
		}
	}
	if opts.IncludeSourceColumn {
		addColumn(interfaces.SourceFileColumn)
	}

	var warnings []string
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		part, err := loadFile(file, opts)
		if err != nil {
			return nil, err
		}
		rel, relErr := filepath.Rel(root, file)
		if relErr != nil {
			rel = filepath.Base(file)
		}
		if part.Warning != "" {
			warnings = append(warnings, rel+": "+part.Warning)
		}
		for _, c := range part.Columns {
			addColumn(c)
		}
		for _, row := range part.Rows {
			if opts.IncludeSourceColumn {
				row[interfaces.SourceFileColumn] = filepath.ToSlash(rel)
			}
			res.Rows = append(res.Rows, row)
		}
		res.Files++
	}
	res.Warning = strings.Join(warnings, "; ")
	return res, nil
}
