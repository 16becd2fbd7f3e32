package container

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"

	"github.com/binarydelta/bsdiff/varint"
)

// endsleyMagic is the 16-byte magic identifying the combined Endsley
// ("ENDSLEY/BSDIFF43") layout.
const endsleyMagic = "ENDSLEY/BSDIFF43"

// endsleyHeaderLen is magic (16) + one 8-byte new_size field.
const endsleyHeaderLen = len(endsleyMagic) + varint.Size

// endsleyWriter buffers the interleaved control/diff/data record stream
// (in the exact order EmitControl/EmitDiff/EmitData are called, which
// already matches the wire interleaving) and compresses it as a single
// bzip2 stream on Close, once new_size is known and the header can be
// written.
type endsleyWriter struct {
	w     io.Writer
	level int
	body  bytes.Buffer
}

func newEndsleyWriter(w io.Writer, level int) (*endsleyWriter, error) {
	return &endsleyWriter{w: w, level: level}, nil
}

func (ew *endsleyWriter) EmitControl(diffSize, copySize, skipSize int64) error {
	var buf [3 * varint.Size]byte
	varint.Put(buf[0:], diffSize)
	varint.Put(buf[varint.Size:], copySize)
	varint.Put(buf[2*varint.Size:], skipSize)
	ew.body.Write(buf[:])
	return nil
}

func (ew *endsleyWriter) EmitDiff(p []byte) error {
	ew.body.Write(p)
	return nil
}

func (ew *endsleyWriter) EmitData(p []byte) error {
	ew.body.Write(p)
	return nil
}

func (ew *endsleyWriter) Close(newSize int64) error {
	header := make([]byte, endsleyHeaderLen)
	copy(header, endsleyMagic)
	varint.Put(header[len(endsleyMagic):], newSize)
	if _, err := ew.w.Write(header); err != nil {
		return err
	}

	var cfg *bzip2.WriterConfig
	if ew.level != 0 {
		cfg = &bzip2.WriterConfig{Level: ew.level}
	}
	bw, err := bzip2.NewWriter(ew.w, cfg)
	if err != nil {
		return fmt.Errorf("container: open bzip2 writer: %w", err)
	}
	if _, err := bw.Write(ew.body.Bytes()); err != nil {
		bw.Close()
		return fmt.Errorf("container: compress body: %w", err)
	}
	return bw.Close()
}

// endsleyReader decodes the 16+8 byte header and then streams control
// records and payloads directly from a single bzip2 decompressor.
type endsleyReader struct {
	newSize int64
	br      *bzip2.Reader
}

func newEndsleyReader(r io.Reader) (*endsleyReader, error) {
	header := make([]byte, endsleyHeaderLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("%w: short header: %v", ErrCorrupt, err)
	}
	if string(header[:len(endsleyMagic)]) != endsleyMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrCorrupt)
	}
	newSize := varint.Get(header[len(endsleyMagic):])
	if newSize < 0 {
		return nil, fmt.Errorf("%w: negative new_size", ErrCorrupt)
	}

	br, err := bzip2.NewReader(r, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &endsleyReader{newSize: newSize, br: br}, nil
}

func (er *endsleyReader) NewSize() (int64, bool) {
	return er.newSize, true
}

func (er *endsleyReader) NextControl() (diffSize, copySize, skipSize int64, ok bool, err error) {
	var buf [3 * varint.Size]byte
	n, readErr := io.ReadFull(er.br, buf[:])
	if readErr == io.EOF && n == 0 {
		return 0, 0, 0, false, nil
	}
	if readErr != nil {
		return 0, 0, 0, false, fmt.Errorf("%w: truncated control record: %v", ErrCorrupt, readErr)
	}
	diffSize = varint.Get(buf[0:])
	copySize = varint.Get(buf[varint.Size:])
	skipSize = varint.Get(buf[2*varint.Size:])
	return diffSize, copySize, skipSize, true, nil
}

func (er *endsleyReader) ReadDiff(p []byte) error {
	if _, err := io.ReadFull(er.br, p); err != nil {
		return fmt.Errorf("%w: short diff payload: %v", ErrCorrupt, err)
	}
	return nil
}

func (er *endsleyReader) ReadData(p []byte) error {
	if _, err := io.ReadFull(er.br, p); err != nil {
		return fmt.Errorf("%w: short data payload: %v", ErrCorrupt, err)
	}
	return nil
}

func (er *endsleyReader) Close() error {
	return er.br.Close()
}
