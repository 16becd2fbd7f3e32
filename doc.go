// Package bsdiff computes and applies binary delta patches between two
// byte sequences in the classical bsdiff tradition.
//
// A patch encodes large approximately-matching regions of a new buffer
// against a shifted window of an old buffer as a byte-wise difference,
// interleaved with literal insertions for the regions that don't match
// anything in old. Matches are found with a suffix array built over old;
// a greedy, heuristic scan extends and overlaps candidate matches to
// produce a short (not minimal) sequence of control records.
//
// Two wire-compatible container formats are supported: Classic, which is
// wire-compatible with the reference "BSDIFF40" tool, and Endsley, which
// is wire-compatible with the "ENDSLEY/BSDIFF43" variant that interleaves
// control, diff and data bytes in a single compressed stream.
//
// # Diffing
//
//	patchPath, err := bsdiff.Diff(oldPath, newPath, "", bsdiff.FormatClassic)
//
// # Patching
//
//	newPath, err := bsdiff.Patch(oldPath, "", patchPath, bsdiff.FormatClassic)
//
// # Index reuse
//
// Building the suffix array is the most expensive step of a diff. When
// diffing the same old buffer against several new buffers, persist the
// index once and reuse it:
//
//	indexPath, err := bsdiff.Index(oldPath, "")
//	patchPath, err := bsdiff.Diff(oldPath, newPath, "", bsdiff.FormatClassic, bsdiff.WithIndexPath(indexPath))
package bsdiff
