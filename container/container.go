// Package container implements the two bsdiff patch wire formats: Classic
// ("BSDIFF40") and Endsley ("ENDSLEY/BSDIFF43"). Both are modeled as a
// tagged Format dispatched to a small Writer/Reader operation set, rather
// than runtime subtype polymorphism.
package container

import (
	"errors"
	"io"
)

// Format selects a concrete patch container layout.
type Format uint8

const (
	// Classic is wire-compatible with the reference "BSDIFF40" tool.
	Classic Format = iota
	// Endsley is wire-compatible with "ENDSLEY/BSDIFF43".
	Endsley
)

// ErrInvalidFormat is returned when an unrecognized Format tag is passed
// to NewWriter or NewReader.
var ErrInvalidFormat = errors.New("container: invalid format")

// ErrCorrupt is returned when a header's magic or size fields don't match
// what the format requires, or a stream ends earlier than declared.
var ErrCorrupt = errors.New("container: corrupt patch")

// Writer accumulates one patch's control records and diff/data payloads
// and flushes them to the underlying stream in the format's wire layout
// on Close.
type Writer interface {
	// EmitControl appends one control record.
	EmitControl(diffSize, copySize, skipSize int64) error
	// EmitDiff appends diff-payload bytes (byte-wise new-minus-old,
	// modulo 256).
	EmitDiff(p []byte) error
	// EmitData appends literal data-payload bytes.
	EmitData(p []byte) error
	// Close writes the header and all accumulated substreams to the
	// underlying writer, flushing and closing any compressors. newSize is
	// the total length of the reconstructed new buffer.
	Close(newSize int64) error
}

// Reader consumes one patch's control records and payloads in the order
// the format lays them out.
type Reader interface {
	// NewSize reports the declared length of new, when the format carries
	// one, and whether it is present.
	NewSize() (size int64, ok bool)
	// NextControl returns the next control record, or ok == false once the
	// control stream is exhausted.
	NextControl() (diffSize, copySize, skipSize int64, ok bool, err error)
	// ReadDiff reads exactly len(p) bytes from the diff payload.
	ReadDiff(p []byte) error
	// ReadData reads exactly len(p) bytes from the data payload.
	ReadData(p []byte) error
	// Close releases any resources (decompressors) held by the reader.
	Close() error
}

// NewWriter returns a Writer for the given format, writing to w.
// compressionLevel is forwarded to the bzip2 codec; 0 uses its default.
func NewWriter(format Format, w io.Writer, compressionLevel int) (Writer, error) {
	switch format {
	case Classic:
		return newClassicWriter(w, compressionLevel), nil
	case Endsley:
		return newEndsleyWriter(w, compressionLevel)
	default:
		return nil, ErrInvalidFormat
	}
}

// NewReader returns a Reader for the given format, reading from r.
func NewReader(format Format, r io.Reader) (Reader, error) {
	switch format {
	case Classic:
		return newClassicReader(r)
	case Endsley:
		return newEndsleyReader(r)
	default:
		return nil, ErrInvalidFormat
	}
}

// DetectFormat peeks at the first bytes of r (which must support peeking
// via the returned replacement reader) to discover which format a patch
// file was written in. It returns the format and a reader that must be
// used in place of r (since some bytes may have already been consumed).
func DetectFormat(r io.Reader) (Format, io.Reader, error) {
	magic := make([]byte, len(endsleyMagic))
	n, err := io.ReadFull(r, magic)
	if err != nil && err != io.ErrUnexpectedEOF {
		return 0, nil, err
	}
	magic = magic[:n]

	rest := io.MultiReader(sliceReader(magic), r)
	switch {
	case len(magic) >= len(endsleyMagic) && string(magic[:len(endsleyMagic)]) == endsleyMagic:
		return Endsley, rest, nil
	case len(magic) >= len(classicMagic) && string(magic[:len(classicMagic)]) == classicMagic:
		return Classic, rest, nil
	default:
		return 0, nil, ErrInvalidFormat
	}
}

func sliceReader(b []byte) io.Reader {
	return &byteSliceReader{b: b}
}

type byteSliceReader struct {
	b []byte
}

func (r *byteSliceReader) Read(p []byte) (int, error) {
	if len(r.b) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.b)
	r.b = r.b[n:]
	return n, nil
}
