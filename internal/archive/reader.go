// Package archive opens and creates citation lists that may be
// compressed. The compression is chosen by file extension: ".xz" and
// ".gz" are decoded transparently, anything else is read as is. The path
// "-" means standard input or output.
package archive

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"

	errs "github.com/FocuswithJustin/pubid/core/errors"
)

// Compression identifies a supported encoding.
type Compression string

const (
	None Compression = ""
	Gzip Compression = "gzip"
	XZ   Compression = "xz"
)

// CompressionOf returns the encoding implied by path's extension.
func CompressionOf(path string) Compression {
	switch {
	case strings.HasSuffix(path, ".xz"):
		return XZ
	case strings.HasSuffix(path, ".gz"):
		return Gzip
	default:
		return None
	}
}

// Reader wraps a file with automatic decompression handling.
type Reader struct {
	io.Reader
	file         io.Closer
	decompressor io.Closer
}

// Open opens path for reading, decompressing by extension.
func Open(path string) (*Reader, error) {
	if path == "-" {
		return &Reader{Reader: os.Stdin}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	r, err := NewReader(f, CompressionOf(path))
	if err != nil {
		f.Close()
		return nil, err
	}
	r.file = f
	return r, nil
}

// NewReader decodes src using the given compression. Closing the
// returned Reader does not close src.
func NewReader(src io.Reader, c Compression) (*Reader, error) {
	switch c {
	case XZ:
		xzr, err := xz.NewReader(src)
		if err != nil {
			return nil, fmt.Errorf("xz reader: %w", err)
		}
		return &Reader{Reader: xzr}, nil // xz reader doesn't need closing
	case Gzip:
		gzr, err := gzip.NewReader(src)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		return &Reader{Reader: gzr, decompressor: gzr}, nil
	case None:
		return &Reader{Reader: src}, nil
	default:
		return nil, errs.NewUnsupported("compression", fmt.Sprintf("%q", c))
	}
}

// Close closes the decompressor and the underlying file.
func (r *Reader) Close() error {
	var first error
	if r.decompressor != nil {
		first = r.decompressor.Close()
		r.decompressor = nil
	}
	if r.file != nil {
		if err := r.file.Close(); err != nil && first == nil {
			first = err
		}
		r.file = nil
	}
	return first
}
