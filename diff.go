package bsdiff

import (
	"github.com/binarydelta/bsdiff/container"
	"github.com/binarydelta/bsdiff/suffixarray"
)

// oldScoreGain is the fixed tuning constant from the classical algorithm:
// the inner extension loop accepts a new candidate match once it gains at
// least this many bytes over the shifted old window.
const oldScoreGain = 8

// generateDiff scans newBuf against old (indexed by ix) and writes the
// resulting control records and diff/data payloads to w. It is the
// classical bsdiff scan: a greedy, heuristic pass that extends and
// overlaps candidate matches rather than searching for a minimal patch.
func generateDiff(ix *suffixarray.Index, old, newBuf []byte, w container.Writer) error {
	var scan, matchLen, lastscan, lastpos, lastoffset int
	pos := 0

	for scan < len(newBuf) {
		oldscore := 0
		scsc := scan
		scan += matchLen

		for scan < len(newBuf) {
			var p int
			p, matchLen = suffixarray.PrefixSearch(ix, old, newBuf, scan)
			pos = p - 1

			for scsc < scan+matchLen {
				if scsc+lastoffset < len(old) && old[scsc+lastoffset] == newBuf[scsc] {
					oldscore++
				}
				scsc++
			}

			if matchLen == oldscore && matchLen != 0 {
				break
			}
			if matchLen > oldscore+oldScoreGain {
				break
			}
			if scan+lastoffset < len(old) && old[scan+lastoffset] == newBuf[scan] {
				oldscore--
			}
			scan++
		}

		if matchLen == oldscore && scan != len(newBuf) {
			continue
		}

		// Forward extension from the previous commit point.
		lenf := 0
		s, sf := 0, 0
		for i := 0; lastscan+i < scan && lastpos+i < len(old); i++ {
			if old[lastpos+i] == newBuf[lastscan+i] {
				s++
			}
			if s*2-(i+1) > sf*2-lenf {
				sf = s
				lenf = i + 1
			}
		}

		// Backward extension from the current match point.
		lenb := 0
		if scan < len(newBuf) {
			s, sb := 0, 0
			for i := 1; scan >= lastscan+i && pos >= i; i++ {
				if old[pos-i] == newBuf[scan-i] {
					s++
				}
				if s*2-i > sb*2-lenb {
					sb = s
					lenb = i
				}
			}
		}

		// Overlap resolution: forward and backward extensions may cover
		// the same bytes; find the crossover that maximizes the
		// (forward-match minus backward-match) score across the overlap.
		if lastscan+lenf > scan-lenb {
			overlap := (lastscan + lenf) - (scan - lenb)
			s, lens := 0, 0
			best := 0
			for i := 0; i < overlap; i++ {
				if newBuf[lastscan+lenf-overlap+i] == old[lastpos+lenf-overlap+i] {
					s++
				}
				if newBuf[scan-lenb+i] == old[pos-lenb+i] {
					s--
				}
				if s > best {
					best = s
					lens = i + 1
				}
			}
			lenf += lens - overlap
			lenb -= lens
		}

		diffSize := int64(lenf)
		copySize := int64((scan - lenb) - (lastscan + lenf))
		skipSize := int64((pos - lenb) - (lastpos + lenf))

		if diffSize != 0 || copySize != 0 || skipSize != 0 {
			if err := w.EmitControl(diffSize, copySize, skipSize); err != nil {
				return err
			}

			diffPayload := make([]byte, lenf)
			for i := 0; i < lenf; i++ {
				diffPayload[i] = newBuf[lastscan+i] - old[lastpos+i]
			}
			if err := w.EmitDiff(diffPayload); err != nil {
				return err
			}

			copyStart := lastscan + lenf
			if err := w.EmitData(newBuf[copyStart : copyStart+int(copySize)]); err != nil {
				return err
			}
		}

		lastscan = scan - lenb
		lastpos = pos - lenb
		lastoffset = pos - scan
	}

	return nil
}
