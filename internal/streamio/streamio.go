// Package streamio opens BCF2 byte streams for reading and writing,
// transparently handling the two compressed-on-disk conventions a
// ".bcf.gz" or ".bcf.zst" filename implies. Plain ".bcf" files are
// opened uncompressed.
package streamio

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	gzip "github.com/klauspost/pgzip"
)

// Compression names the codec a stream's filename implies.
type Compression int

const (
	None Compression = iota
	Gzip
	Zstd
)

// DetectCompression inspects filename's suffix and reports which
// compression, if any, the caller should apply.
func DetectCompression(filename string) Compression {
	switch {
	case strings.HasSuffix(filename, ".gz"):
		return Gzip
	case strings.HasSuffix(filename, ".zst"):
		return Zstd
	default:
		return None
	}
}

// reader wraps an underlying file handle and its decompressor (if any)
// so Close releases both.
type reader struct {
	file io.Closer
	dec  io.Reader
	zr   *zstd.Decoder
	gz   *gzip.Reader
}

func (r *reader) Read(p []byte) (int, error) { return r.dec.Read(p) }

func (r *reader) Close() error {
	if r.zr != nil {
		r.zr.Close()
	}
	if r.gz != nil {
		r.gz.Close()
	}
	return r.file.Close()
}

// Open opens filename for reading, applying the decompressor its
// suffix implies.
func Open(filename string) (io.ReadCloser, error) {
	fh, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("streamio: opening %s: %w", filename, err)
	}
	switch DetectCompression(filename) {
	case Gzip:
		gz, err := gzip.NewReader(fh)
		if err != nil {
			fh.Close()
			return nil, fmt.Errorf("streamio: %s is not valid gzip: %w", filename, err)
		}
		return &reader{file: fh, dec: gz, gz: gz}, nil
	case Zstd:
		zr, err := zstd.NewReader(fh)
		if err != nil {
			fh.Close()
			return nil, fmt.Errorf("streamio: %s is not valid zstd: %w", filename, err)
		}
		return &reader{file: fh, dec: zr, zr: zr}, nil
	default:
		return fh, nil
	}
}

// writer wraps an underlying file handle and its compressor (if any)
// so Close flushes and releases both, in the right order.
type writer struct {
	file io.Closer
	enc  io.Writer
	zw   *zstd.Encoder
	gz   *gzip.Writer
}

func (w *writer) Write(p []byte) (int, error) { return w.enc.Write(p) }

func (w *writer) Close() error {
	var err error
	if w.zw != nil {
		err = w.zw.Close()
	}
	if w.gz != nil {
		if cerr := w.gz.Close(); err == nil {
			err = cerr
		}
	}
	if cerr := w.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// Create creates filename for writing, applying the compressor its
// suffix implies.
func Create(filename string) (io.WriteCloser, error) {
	fh, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("streamio: creating %s: %w", filename, err)
	}
	switch DetectCompression(filename) {
	case Gzip:
		gz := gzip.NewWriter(fh)
		return &writer{file: fh, enc: gz, gz: gz}, nil
	case Zstd:
		zw, err := zstd.NewWriter(fh)
		if err != nil {
			fh.Close()
			return nil, fmt.Errorf("streamio: %s: %w", filename, err)
		}
		return &writer{file: fh, enc: zw, zw: zw}, nil
	default:
		return fh, nil
	}
}
