package bcf2

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// magic is the four-byte BCF2 prologue: "BCF" followed by the major
// version. Minor version follows as a separate byte.
var magic = [4]byte{'B', 'C', 'F', 2}

// WriterOptions configures a Writer. MinorVersion selects which of the
// two on-wire variants (1 or 2) a stream is written in; the codec never
// silently up- or down-converts between them.
type WriterOptions struct {
	MinorVersion int
}

// Writer is a cursor-style sequential encoder over an underlying byte
// sink: construct once against a textual VCF header, then call
// WriteRecord per variant call.
type Writer struct {
	w      io.Writer
	schema *Schema
	minor  int
}

// NewWriter writes the BCF2 prologue (magic, minor version, header
// length, embedded header text) and returns a Writer ready to accept
// records built against the resulting schema.
func NewWriter(w io.Writer, headerText string, opts WriterOptions) (*Writer, error) {
	if opts.MinorVersion != 1 && opts.MinorVersion != 2 {
		return nil, fmt.Errorf("%w: minor version %d", ErrUnsupportedVersion, opts.MinorVersion)
	}
	schema, err := BuildSchema(headerText, opts.MinorVersion)
	if err != nil {
		return nil, err
	}

	if _, err := w.Write(magic[:]); err != nil {
		return nil, err
	}
	if _, err := w.Write([]byte{byte(opts.MinorVersion)}); err != nil {
		return nil, err
	}

	body := append([]byte(headerText), 0)
	if err := binary.Write(w, binary.LittleEndian, uint32(len(body))); err != nil {
		return nil, err
	}
	if _, err := w.Write(body); err != nil {
		return nil, err
	}

	return &Writer{w: w, schema: schema, minor: opts.MinorVersion}, nil
}

// Schema exposes the writer's header-derived dictionaries and field
// schemas, e.g. so a caller can resolve a contig name to its offset.
func (w *Writer) Schema() *Schema { return w.schema }

// WriteRecord encodes vc against the writer's schema and appends it to
// the stream as a size-prefixed (sites block, genotypes block) pair.
func (w *Writer) WriteRecord(vc *VariantCall) error {
	nSamples := vc.Genotypes.NumSamples()
	nHeaderSamples := len(w.schema.Header.Samples)
	if nSamples != nHeaderSamples {
		return fmt.Errorf("%w: record has %d samples, header declares %d", ErrMalformedRecord, nSamples, nHeaderSamples)
	}

	sites, err := encodeSitesBlock(w.schema, vc)
	if err != nil {
		return err
	}
	genotypes, err := encodeGenotypesBlock(w.schema, vc)
	if err != nil {
		return err
	}
	if err := binary.Write(w.w, binary.LittleEndian, uint32(len(sites))); err != nil {
		return err
	}
	if err := binary.Write(w.w, binary.LittleEndian, uint32(len(genotypes))); err != nil {
		return err
	}
	if _, err := w.w.Write(sites); err != nil {
		return err
	}
	if _, err := w.w.Write(genotypes); err != nil {
		return err
	}
	return nil
}

// Reader is a cursor-style sequential decoder. Sites fields are decoded
// eagerly; the genotypes block is handed to the caller as a lazy
// Genotypes handle, decoded on first access.
type Reader struct {
	r       *bufio.Reader
	schema  *Schema
	minor   int
	recNum  int
	byteOff int64
}

// NewReader parses the BCF2 prologue and returns a Reader positioned at
// the first record.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)

	var got [4]byte
	if _, err := io.ReadFull(br, got[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMagic, err)
	}
	if got != magic {
		return nil, ErrInvalidMagic
	}
	minorByte, err := br.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMagic, err)
	}
	minor := int(minorByte)
	if minor != 1 && minor != 2 {
		return nil, fmt.Errorf("%w: minor version %d", ErrUnsupportedVersion, minor)
	}

	var headerLen uint32
	if err := binary.Read(br, binary.LittleEndian, &headerLen); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}
	body := make([]byte, headerLen)
	if _, err := io.ReadFull(br, body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}
	nul := bytes.IndexByte(body, 0)
	if nul < 0 {
		return nil, fmt.Errorf("%w: embedded header is not NUL-terminated", ErrInvalidHeader)
	}
	headerText := string(body[:nul])

	schema, err := BuildSchema(headerText, minor)
	if err != nil {
		return nil, err
	}

	return &Reader{r: br, schema: schema, minor: minor, byteOff: int64(4 + 1 + 4) + int64(headerLen)}, nil
}

// Schema exposes the reader's header-derived dictionaries and field
// schemas.
func (r *Reader) Schema() *Schema { return r.schema }

// SampleNames returns the sample names the embedded VCF header's
// #CHROM column line declared, in column order.
func (r *Reader) SampleNames() []string { return r.schema.Header.Samples }

// HeaderText reconstructs the embedded textual VCF header.
func (r *Reader) HeaderText() string { return r.schema.Header.String() }

// ReadRecord decodes the next (sites block, genotypes block) pair. It
// returns io.EOF once the stream is exhausted.
func (r *Reader) ReadRecord() (*VariantCall, error) {
	var sitesLen, genotypesLen uint32
	if err := binary.Read(r.r, binary.LittleEndian, &sitesLen); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, posErr(r.recNum, r.byteOff, fmt.Errorf("%w: %v", ErrMalformedRecord, err))
	}
	if err := binary.Read(r.r, binary.LittleEndian, &genotypesLen); err != nil {
		return nil, posErr(r.recNum, r.byteOff, fmt.Errorf("%w: %v", ErrMalformedRecord, err))
	}

	sites := make([]byte, sitesLen)
	if _, err := io.ReadFull(r.r, sites); err != nil {
		return nil, posErr(r.recNum, r.byteOff, fmt.Errorf("%w: %v", ErrMalformedRecord, err))
	}
	genotypes := make([]byte, genotypesLen)
	if _, err := io.ReadFull(r.r, genotypes); err != nil {
		return nil, posErr(r.recNum, r.byteOff, fmt.Errorf("%w: %v", ErrMalformedRecord, err))
	}

	vc, nSamples, nFormatFields, err := decodeSitesBlock(r.schema, sites)
	if err != nil {
		return nil, posErr(r.recNum, r.byteOff, err)
	}
	if nHeaderSamples := len(r.schema.Header.Samples); nSamples != nHeaderSamples {
		return nil, posErr(r.recNum, r.byteOff, fmt.Errorf("%w: record has %d samples, header declares %d", ErrMalformedRecord, nSamples, nHeaderSamples))
	}
	vc.Genotypes = newLazyGenotypes(r.schema, nSamples, nFormatFields, genotypes)

	r.byteOff += int64(8 + len(sites) + len(genotypes))
	r.recNum++
	return vc, nil
}
