package fileloader

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/ulikunitz/xz"
)

// CompressionType represents the compression format of a file
type CompressionType int

const (
	CompressionNone CompressionType = iota
	CompressionGzip
	CompressionBzip2
	CompressionXZ
)

// String returns the string representation of CompressionType
func (ct CompressionType) String() string {
	switch ct {
	case CompressionGzip:
		return "gzip"
	case CompressionBzip2:
		return "bzip2"
	case CompressionXZ:
		return "xz"
	default:
		return "none"
	}
}

// Magic byte signatures for compression detection
var (
	gzipMagic  = []byte{0x1f, 0x8b}
	bzip2Magic = []byte{0x42, 0x5a, 0x68}
	xzMagic    = []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}
)

// DetectCompression returns the compression format of data from its magic bytes
func DetectCompression(data []byte) CompressionType {
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		return CompressionGzip
	case bytes.HasPrefix(data, bzip2Magic):
		return CompressionBzip2
	case bytes.HasPrefix(data, xzMagic):
		return CompressionXZ
	}
	return CompressionNone
}

// Decompress inflates data. If decompression fails mid-stream after some
// output was produced, the partial output is returned with a warning.
func Decompress(data []byte, ct CompressionType) ([]byte, string, error) {
	var reader io.Reader
	src := bytes.NewReader(data)

	switch ct {
	case CompressionNone:
		return data, "", nil
	case CompressionGzip:
		gz, err := gzip.NewReader(src)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	case CompressionBzip2:
		reader = bzip2.NewReader(src)
	case CompressionXZ:
		xzr, err := xz.NewReader(src)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create xz reader: %w", err)
		}
		reader = xzr
	default:
		return nil, "", fmt.Errorf("unsupported compression type: %v", ct)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		if buf.Len() == 0 {
			return nil, "", fmt.Errorf("decompression failed: %w", err)
		}
		return buf.Bytes(), fmt.Sprintf("Decompression incomplete: %v. Some rows may be missing.", err), nil
	}
	return buf.Bytes(), "", nil
}

// readSource reads a file and inflates it when its content is compressed
func readSource(path string) ([]byte, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return Decompress(raw, DetectCompression(raw))
}
