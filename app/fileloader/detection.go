package fileloader

import (
	"bytes"
	"strings"
)

// compressionExtensions are stripped before the inner extension is examined
var compressionExtensions = []string{".gz", ".bz2", ".xz"}

// GetUncompressedExtension returns the file extension without compression suffix
// e.g., "calls.csv.gz" -> ".csv", "calls.json.bz2" -> ".json"
func GetUncompressedExtension(filePath string) string {
	lower := strings.ToLower(filePath)
	for _, ext := range compressionExtensions {
		if strings.HasSuffix(lower, ext) {
			lower = strings.TrimSuffix(lower, ext)
			break
		}
	}

	lastDot := strings.LastIndex(lower, ".")
	if lastDot == -1 || strings.ContainsAny(lower[lastDot:], `/\`) {
		return ""
	}
	return lower[lastDot:]
}

// DetectFileType determines the file type from the extension, ignoring any
// compression suffix. Files without a known extension are sniffed from their
// decompressed content.
func DetectFileType(filePath string, content []byte) FileType {
	switch GetUncompressedExtension(filePath) {
	case ".csv", ".tsv":
		return FileTypeCSV
	case ".xlsx":
		return FileTypeXLSX
	case ".json":
		return FileTypeJSON
	case ".jsonl", ".ndjson":
		return FileTypeNDJSON
	}
	return sniffFileType(content)
}

// sniffFileType guesses the type of extensionless content
func sniffFileType(content []byte) FileType {
	if bytes.HasPrefix(content, []byte("PK\x03\x04")) {
		return FileTypeXLSX
	}
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return FileTypeUnknown
	}
	switch trimmed[0] {
	case '[':
		return FileTypeJSON
	case '{':
		if line, _, found := bytes.Cut(trimmed, []byte("\n")); found && bytes.HasSuffix(bytes.TrimSpace(line), []byte("}")) {
			return FileTypeNDJSON
		}
		return FileTypeJSON
	}
	return FileTypeCSV
}
