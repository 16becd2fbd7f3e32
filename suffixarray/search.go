package suffixarray

// PrefixSearch finds the longest common prefix between new[t:] and any
// suffix of old, using the suffix array ix. It returns pos, a one-based
// offset into old, and length, the number of bytes new[t:t+length] and
// old[pos-1:pos-1+length] have in common.
//
// The search is a classical lcp-accelerated binary search: an inclusive
// candidate range [lo, hi] is narrowed one step at a time, tracking how
// many leading bytes are already known to match at each end of the range
// (loCommon, hiCommon) so that the running common prefix c = min(loCommon,
// hiCommon) is never re-compared from scratch.
func PrefixSearch(ix *Index, old, newBuf []byte, t int) (pos int, length int) {
	n := ix.Len()
	if n == 0 {
		return 1, 0
	}

	lo, hi := 1, n
	loCommon, hiCommon := 0, 0

	// lo/hi are 1-based logical positions into the (conceptually 1..n)
	// suffix array, but Offset takes a zero-based index, so callers below
	// subtract 1.

	cmpAt := func(i int) (sign int, extra int) {
		s := ix.Offset(i - 1)
		c := min(loCommon, hiCommon)
		// Compared as new vs old: new[t:] sorting after old[s:] means the
		// match position lies in the upper half of the candidate range,
		// so lo advances.
		return compareFrom(newBuf[t:], old[s:], c)
	}

	for hi-lo >= 2 {
		m := (lo + hi) / 2
		sign, extra := cmpAt(m)
		c := min(loCommon, hiCommon)
		if sign > 0 {
			lo = m
			loCommon = c + extra
		} else {
			hi = m
			hiCommon = c + extra
		}
	}

	// Resolve the final candidate(s). loCommon/hiCommon already hold a
	// verified lower bound on each side's match length, so only the tail
	// beyond that bound needs comparing.
	_, loExtra := compareFrom(newBuf[t:], old[ix.Offset(lo-1):], loCommon)
	loLen := loCommon + loExtra
	if lo == hi {
		return ix.Offset(lo-1) + 1, loLen
	}
	_, hiExtra := compareFrom(newBuf[t:], old[ix.Offset(hi-1):], hiCommon)
	hiLen := hiCommon + hiExtra

	if hiLen >= loLen {
		return ix.Offset(hi-1) + 1, hiLen
	}
	return ix.Offset(lo-1) + 1, loLen
}

// compareFrom compares a[skip:] against b[skip:] byte by byte, returning
// the signum of the first differing byte (or of the relative lengths if
// one side runs out first) and the number of additional bytes found equal
// beyond skip.
func compareFrom(a, b []byte, skip int) (sign int, extra int) {
	if skip > len(a) {
		skip = len(a)
	}
	if skip > len(b) {
		skip = len(b)
	}
	i := skip
	for i < len(a) && i < len(b) {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1, i - skip
			}
			return 1, i - skip
		}
		i++
	}
	extra = i - skip
	switch {
	case len(a)-skip == len(b)-skip:
		return 0, extra
	case len(a) < len(b):
		return -1, extra
	default:
		return 1, extra
	}
}

// MatchLen returns the number of leading bytes a and b have in common.
func MatchLen(a, b []byte) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
