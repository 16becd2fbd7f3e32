package bsdiff

import "errors"

// Sentinel errors returned by the diff, patch and index operations.
var (
	// ErrCorruptPatch is returned when a control record violates a bounds
	// invariant, a payload is truncated, or a container header's magic or
	// size fields don't match what was declared.
	ErrCorruptPatch = errors.New("bsdiff: corrupt patch")
	// ErrCorruptIndex is returned when a persisted suffix-array index has
	// a bad header, an unrecognized unit size, or a short read.
	ErrCorruptIndex = errors.New("bsdiff: corrupt index")
	// ErrInvalidFormat is returned when an unknown format tag is passed to
	// Diff or Patch. The container constructors report unknown tags with
	// container.ErrInvalidFormat instead.
	ErrInvalidFormat = errors.New("bsdiff: invalid format")
	// ErrTooLarge is returned when old or new exceeds the maximum size this
	// implementation supports (bounded by the signed 64-bit control fields).
	ErrTooLarge = errors.New("bsdiff: input too large")
)
