package suffixarray

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// magicHeader is the fixed 13-byte header, including its trailing NUL,
// that prefixes every persisted index.
const magicHeader = "SUFFIX ARRAY\x00"

// ErrCorruptIndex is returned by ReadIndex when the header doesn't match,
// the unit-size byte isn't one of {1,2,4,8}, or the file is short.
var ErrCorruptIndex = errors.New("suffixarray: corrupt index")

// WriteIndex serializes ix to w as: the 13-byte magic header, one byte
// giving the element width, then len(old) little-endian elements of that
// width holding the suffix offsets in order.
func WriteIndex(w io.Writer, ix *Index) error {
	if _, err := io.WriteString(w, magicHeader); err != nil {
		return err
	}
	if _, err := w.Write([]byte{byte(ix.width)}); err != nil {
		return err
	}

	buf := make([]byte, ix.width)
	for _, off := range ix.offsets {
		putWidth(buf, ix.width, off)
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// ReadIndex parses a persisted index produced by WriteIndex. n is the
// expected number of elements (len(old) of the diff this index belongs
// to); a file holding fewer than n elements causes a short read and
// therefore ErrCorruptIndex. Elements after the first n are not read.
func ReadIndex(r io.Reader, n int) (*Index, error) {
	header := make([]byte, len(magicHeader))
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptIndex, err)
	}
	if string(header) != magicHeader {
		return nil, fmt.Errorf("%w: bad magic", ErrCorruptIndex)
	}

	unitByte := make([]byte, 1)
	if _, err := io.ReadFull(r, unitByte); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptIndex, err)
	}
	width := Width(unitByte[0])
	switch width {
	case Width1, Width2, Width4, Width8:
	default:
		return nil, fmt.Errorf("%w: unit size %d not in {1,2,4,8}", ErrCorruptIndex, width)
	}

	offsets := make([]int, n)
	buf := make([]byte, width)
	for i := range offsets {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptIndex, err)
		}
		offsets[i] = getWidth(buf, width)
	}

	return &Index{width: width, offsets: offsets}, nil
}

func putWidth(buf []byte, width Width, v int) {
	switch width {
	case Width1:
		buf[0] = byte(v)
	case Width2:
		binary.LittleEndian.PutUint16(buf, uint16(v))
	case Width4:
		binary.LittleEndian.PutUint32(buf, uint32(v))
	default:
		binary.LittleEndian.PutUint64(buf, uint64(v))
	}
}

func getWidth(buf []byte, width Width) int {
	switch width {
	case Width1:
		return int(buf[0])
	case Width2:
		return int(binary.LittleEndian.Uint16(buf))
	case Width4:
		return int(binary.LittleEndian.Uint32(buf))
	default:
		return int(binary.LittleEndian.Uint64(buf))
	}
}
