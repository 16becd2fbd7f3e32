// Package varint implements the 8-byte little-endian, sign-magnitude
// biased integer encoding used throughout bsdiff's control records and
// container headers.
package varint

import "encoding/binary"

// minInt64 is the bias point used by the sign-magnitude transform below.
const minInt64 = int64(-1) << 63

// Size is the encoded width of every integer field, in bytes.
const Size = 8

// Encode applies the sign-magnitude-biased transform: non-negative numbers
// pass through unchanged, while negative numbers are rewritten as
// (minInt64 - x): the sign bit set and the magnitude in the low bits, so
// for small magnitudes of either sign every byte but the top one is 0x00,
// and the top byte is 0x00 or 0x80. Two's-complement would instead fill
// the high bytes of small negative numbers with 0xFF, which defeats the
// entropy coder the containers wrap the control stream in.
//
// Decode(Encode(x)) == x for every x except minInt64, which has no
// sign-magnitude form and encodes as 0.
func Encode(x int64) uint64 {
	if x >= 0 {
		return uint64(x)
	}
	return uint64(minInt64 - x)
}

// Decode inverts Encode.
func Decode(y uint64) int64 {
	if y>>63 == 0 {
		return int64(y)
	}
	return minInt64 - int64(y)
}

// Put writes the Size-byte little-endian encoded form of x into buf, which
// must be at least Size bytes.
func Put(buf []byte, x int64) {
	binary.LittleEndian.PutUint64(buf, Encode(x))
}

// Get reads a Size-byte little-endian encoded value from buf, which must
// be at least Size bytes.
func Get(buf []byte) int64 {
	return Decode(binary.LittleEndian.Uint64(buf))
}
