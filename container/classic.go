package container

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"

	"github.com/binarydelta/bsdiff/varint"
)

// classicMagic is the 8-byte magic identifying the Classic ("BSDIFF40")
// container.
const classicMagic = "BSDIFF40"

// classicHeaderLen is magic (8) + three 8-byte integer fields.
const classicHeaderLen = 8 + 3*varint.Size

// classicWriter buffers one patch's control records and diff/data payload
// bytes, and writes the framed, independently bzip2-compressed layout on
// Close. Classic's header declares the compressed lengths of the control
// and diff substreams up front, so they must be fully compressed before
// anything is written to the underlying stream.
type classicWriter struct {
	w       io.Writer
	level   int
	control bytes.Buffer // raw encoded control records, pre-compression
	diff    bytes.Buffer // raw diff-payload bytes, pre-compression
	data    bytes.Buffer // raw data-payload bytes, pre-compression
}

func newClassicWriter(w io.Writer, level int) *classicWriter {
	return &classicWriter{w: w, level: level}
}

func (cw *classicWriter) EmitControl(diffSize, copySize, skipSize int64) error {
	var buf [varint.Size]byte
	for _, v := range [3]int64{diffSize, copySize, skipSize} {
		varint.Put(buf[:], v)
		cw.control.Write(buf[:])
	}
	return nil
}

func (cw *classicWriter) EmitDiff(p []byte) error {
	cw.diff.Write(p)
	return nil
}

func (cw *classicWriter) EmitData(p []byte) error {
	cw.data.Write(p)
	return nil
}

func (cw *classicWriter) bzip2Compress(raw []byte) ([]byte, error) {
	var out bytes.Buffer
	bw, err := bzip2.NewWriter(&out, cw.writerConfig())
	if err != nil {
		return nil, err
	}
	if _, err := bw.Write(raw); err != nil {
		bw.Close()
		return nil, err
	}
	if err := bw.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func (cw *classicWriter) writerConfig() *bzip2.WriterConfig {
	if cw.level == 0 {
		return nil
	}
	return &bzip2.WriterConfig{Level: cw.level}
}

func (cw *classicWriter) Close(newSize int64) error {
	compressedControl, err := cw.bzip2Compress(cw.control.Bytes())
	if err != nil {
		return fmt.Errorf("container: compress control block: %w", err)
	}
	compressedDiff, err := cw.bzip2Compress(cw.diff.Bytes())
	if err != nil {
		return fmt.Errorf("container: compress diff block: %w", err)
	}
	compressedData, err := cw.bzip2Compress(cw.data.Bytes())
	if err != nil {
		return fmt.Errorf("container: compress data block: %w", err)
	}

	header := make([]byte, classicHeaderLen)
	copy(header, classicMagic)
	varint.Put(header[8:], int64(len(compressedControl)))
	varint.Put(header[16:], int64(len(compressedDiff)))
	varint.Put(header[24:], newSize)

	for _, chunk := range [][]byte{header, compressedControl, compressedDiff, compressedData} {
		if _, err := cw.w.Write(chunk); err != nil {
			return err
		}
	}
	return nil
}

// classicReader decompresses the three substreams eagerly into memory at
// open time; each is then consumed sequentially by NextControl/ReadDiff/
// ReadData.
type classicReader struct {
	newSize int64

	control []byte // decompressed control records
	ctrlPos int

	diff    []byte
	diffPos int

	data    []byte
	dataPos int
}

func newClassicReader(r io.Reader) (*classicReader, error) {
	header := make([]byte, classicHeaderLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("%w: short header: %v", ErrCorrupt, err)
	}
	if string(header[:8]) != classicMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrCorrupt)
	}
	controlLen := varint.Get(header[8:])
	diffLen := varint.Get(header[16:])
	newSize := varint.Get(header[24:])
	if controlLen < 0 || diffLen < 0 || newSize < 0 {
		return nil, fmt.Errorf("%w: negative header field", ErrCorrupt)
	}

	control, err := decompressBzip2(io.LimitReader(r, controlLen))
	if err != nil {
		return nil, fmt.Errorf("%w: control block: %v", ErrCorrupt, err)
	}
	diff, err := decompressBzip2(io.LimitReader(r, diffLen))
	if err != nil {
		return nil, fmt.Errorf("%w: diff block: %v", ErrCorrupt, err)
	}
	data, err := decompressBzip2(r)
	if err != nil {
		return nil, fmt.Errorf("%w: data block: %v", ErrCorrupt, err)
	}

	return &classicReader{
		newSize: newSize,
		control: control,
		diff:    diff,
		data:    data,
	}, nil
}

func decompressBzip2(r io.Reader) ([]byte, error) {
	br, err := bzip2.NewReader(r, nil)
	if err != nil {
		return nil, err
	}
	defer br.Close()
	return io.ReadAll(br)
}

func (cr *classicReader) NewSize() (int64, bool) {
	return cr.newSize, true
}

func (cr *classicReader) NextControl() (diffSize, copySize, skipSize int64, ok bool, err error) {
	if cr.ctrlPos >= len(cr.control) {
		return 0, 0, 0, false, nil
	}
	if cr.ctrlPos+3*varint.Size > len(cr.control) {
		return 0, 0, 0, false, fmt.Errorf("%w: truncated control record", ErrCorrupt)
	}
	diffSize = varint.Get(cr.control[cr.ctrlPos:])
	copySize = varint.Get(cr.control[cr.ctrlPos+varint.Size:])
	skipSize = varint.Get(cr.control[cr.ctrlPos+2*varint.Size:])
	cr.ctrlPos += 3 * varint.Size
	return diffSize, copySize, skipSize, true, nil
}

func (cr *classicReader) ReadDiff(p []byte) error {
	return readFromBuf(&cr.diff, &cr.diffPos, p)
}

func (cr *classicReader) ReadData(p []byte) error {
	return readFromBuf(&cr.data, &cr.dataPos, p)
}

func readFromBuf(buf *[]byte, pos *int, p []byte) error {
	if *pos+len(p) > len(*buf) {
		return fmt.Errorf("%w: short payload read", ErrCorrupt)
	}
	copy(p, (*buf)[*pos:*pos+len(p)])
	*pos += len(p)
	return nil
}

func (cr *classicReader) Close() error {
	return nil
}
