package archive

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ulikunitz/xz"

	errs "github.com/FocuswithJustin/pubid/core/errors"
)

// Writer compresses into a file. Close must be called to flush the
// compressed stream.
type Writer struct {
	io.Writer
	file       io.Closer
	compressor io.Closer
}

// Create creates path (and its parent directories), compressing by
// extension.
func Create(path string) (*Writer, error) {
	if path == "-" {
		return &Writer{Writer: os.Stdout}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create parent directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	w, err := NewWriter(f, CompressionOf(path))
	if err != nil {
		f.Close()
		return nil, err
	}
	w.file = f
	return w, nil
}

// NewWriter encodes into dst. Closing the returned Writer flushes the
// encoder but does not close dst.
func NewWriter(dst io.Writer, c Compression) (*Writer, error) {
	switch c {
	case XZ:
		xzw, err := xz.NewWriter(dst)
		if err != nil {
			return nil, fmt.Errorf("xz writer: %w", err)
		}
		return &Writer{Writer: xzw, compressor: xzw}, nil
	case Gzip:
		gzw := gzip.NewWriter(dst)
		return &Writer{Writer: gzw, compressor: gzw}, nil
	case None:
		return &Writer{Writer: dst}, nil
	default:
		return nil, errs.NewUnsupported("compression", fmt.Sprintf("%q", c))
	}
}

// Close flushes the compressor, then closes the file. Calls after the
// first are no-ops.
func (w *Writer) Close() error {
	var first error
	if w.compressor != nil {
		first = w.compressor.Close()
		w.compressor = nil
	}
	if w.file != nil {
		if err := w.file.Close(); err != nil && first == nil {
			first = err
		}
		w.file = nil
	}
	return first
}
