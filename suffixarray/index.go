// Package suffixarray builds and searches a suffix array over a byte
// buffer, and persists it to a fixed on-disk format for reuse across
// multiple diffs against the same buffer.
package suffixarray

// Width identifies the element size used to store suffix-array offsets.
// The narrowest width that can hold len(old)-1 is chosen, matching the
// on-disk index format's unit-size byte.
type Width uint8

const (
	Width1 Width = 1
	Width2 Width = 2
	Width4 Width = 4
	Width8 Width = 8
)

// widthFor returns the narrowest Width able to represent every offset in
// [0, n).
func widthFor(n int) Width {
	switch {
	case n <= 1<<8:
		return Width1
	case n <= 1<<16:
		return Width2
	case n <= 1<<32:
		return Width4
	default:
		return Width8
	}
}

// Index is a suffix array over an old buffer: a permutation of [0, n) such
// that the suffixes of old starting at those offsets are in ascending
// lexicographic order.
type Index struct {
	width   Width
	offsets []int
}

// Build constructs a suffix array over old using the Larsson-Sadakane
// prefix-doubling sort (the "qsufsort" algorithm from the classical bsdiff
// lineage).
func Build(old []byte) *Index {
	offsets := qsufsort(old)
	return &Index{
		width:   widthFor(len(old)),
		offsets: offsets,
	}
}

// FromOffsets wraps a precomputed, already-sorted offsets slice (used when
// reloading a persisted index). The caller is responsible for the
// ordering invariant.
func FromOffsets(offsets []int) *Index {
	return &Index{
		width:   widthFor(len(offsets)),
		offsets: offsets,
	}
}

// Len returns the number of suffixes (== len(old) at build time).
func (ix *Index) Len() int {
	return len(ix.offsets)
}

// Width reports the on-disk element width selected for this index.
func (ix *Index) Width() Width {
	return ix.width
}

// Offset returns the zero-based start offset into old of the i-th
// lexicographically ordered suffix, where i is also zero-based.
func (ix *Index) Offset(i int) int {
	return ix.offsets[i]
}

// Offsets returns the raw offsets slice. Callers must not mutate it.
func (ix *Index) Offsets() []int {
	return ix.offsets
}

// qsufsort builds a suffix array over buf using bucket-sort initialization
// followed by prefix doubling with rank-based grouping. I and V both have
// length len(buf)+1 during construction; the sentinel at index len(buf)
// (a virtual empty suffix, which sorts first) is stripped before return.
func qsufsort(buf []byte) []int {
	n := len(buf)
	if n == 0 {
		return []int{}
	}

	I := make([]int, n+1)
	V := make([]int, n+1)

	var buckets [256]int
	for _, b := range buf {
		buckets[b]++
	}
	for i := 1; i < 256; i++ {
		buckets[i] += buckets[i-1]
	}
	for i := 255; i > 0; i-- {
		buckets[i] = buckets[i-1]
	}
	buckets[0] = 0

	for i, b := range buf {
		buckets[b]++
		I[buckets[b]] = i
	}
	I[0] = n

	for i, b := range buf {
		V[i] = buckets[b]
	}
	V[n] = 0

	for i := 1; i < 256; i++ {
		if buckets[i] == buckets[i-1]+1 {
			I[buckets[i]] = -1
		}
	}
	I[0] = -1

	for h := 1; I[0] != -(n + 1); h += h {
		length := 0
		i := 0
		for i < n+1 {
			if I[i] < 0 {
				length -= I[i]
				i -= I[i]
			} else {
				if length != 0 {
					I[i-length] = -length
				}
				length = V[I[i]] + 1 - i
				qsufsortSplit(I, V, i, length, h)
				i += length
				length = 0
			}
		}
		if length != 0 {
			I[i-length] = -length
		}
	}

	for i := 0; i < n+1; i++ {
		I[V[i]] = i
	}

	// I[0] now holds the sentinel (the position of the virtual empty
	// suffix); the real suffix array follows at I[1:].
	return I[1:]
}

// qsufsortSplit partitions I[start:start+length] by rank-at-offset-h,
// recursing on the low and high partitions and resolving ties via
// insertion-sort for small groups. This is the inner step of the
// prefix-doubling pass: after each call with doubling h, every group of
// indices sharing a 2h-byte prefix is contiguous in I.
func qsufsortSplit(I, V []int, start, length, h int) {
	if length < 16 {
		for k := start; k < start+length; {
			j := 1
			x := V[I[k]+h]
			for i := 1; k+i < start+length; i++ {
				if V[I[k+i]+h] < x {
					x = V[I[k+i]+h]
					j = 0
				}
				if V[I[k+i]+h] == x {
					I[k+j], I[k+i] = I[k+i], I[k+j]
					j++
				}
			}
			for i := 0; i < j; i++ {
				V[I[k+i]] = k + j - 1
			}
			if j == 1 {
				I[k] = -1
			}
			k += j
		}
		return
	}

	x := V[I[start+length/2]+h]
	lo, hi := 0, 0
	for i := start; i < start+length; i++ {
		switch {
		case V[I[i]+h] < x:
			lo++
		case V[I[i]+h] == x:
			hi++
		}
	}
	lo += start
	hi += lo

	i, j, k := start, 0, 0
	for i < lo {
		switch {
		case V[I[i]+h] < x:
			i++
		case V[I[i]+h] == x:
			I[i], I[lo+j] = I[lo+j], I[i]
			j++
		default:
			I[i], I[hi+k] = I[hi+k], I[i]
			k++
		}
	}
	for lo+j < hi {
		if V[I[lo+j]+h] == x {
			j++
		} else {
			I[lo+j], I[hi+k] = I[hi+k], I[lo+j]
			k++
		}
	}

	if lo > start {
		qsufsortSplit(I, V, start, lo-start, h)
	}
	for i := 0; i < hi-lo; i++ {
		V[I[lo+i]] = hi - 1
	}
	if lo == hi-1 {
		I[lo] = -1
	}
	if start+length > hi {
		qsufsortSplit(I, V, hi, start+length-hi, h)
	}
}
