package bsdiff

import (
	"fmt"
	"io"

	"github.com/binarydelta/bsdiff/container"
)

// applyPatch replays the control records read from r against old, writing
// the reconstructed buffer to w. Every control record is bounds-checked
// before it is applied, and any violation is reported as ErrCorruptPatch
// rather than a panic or silent truncation.
func applyPatch(old []byte, r container.Reader, w io.Writer) error {
	newSize, haveSize := r.NewSize()

	var oldPos, newPos int64

	for {
		diffSize, copySize, skipSize, ok, err := r.NextControl()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCorruptPatch, err)
		}
		if !ok {
			break
		}

		if diffSize < 0 || copySize < 0 {
			return fmt.Errorf("%w: negative control field", ErrCorruptPatch)
		}
		if haveSize && newPos+diffSize+copySize > newSize {
			return fmt.Errorf("%w: control record overruns declared new size", ErrCorruptPatch)
		}
		if oldPos < 0 {
			return fmt.Errorf("%w: old_pos went negative", ErrCorruptPatch)
		}
		if oldPos+diffSize > int64(len(old)) {
			return fmt.Errorf("%w: diff span overruns old", ErrCorruptPatch)
		}

		if diffSize > 0 {
			buf := make([]byte, diffSize)
			if err := r.ReadDiff(buf); err != nil {
				return fmt.Errorf("%w: %v", ErrCorruptPatch, err)
			}
			for i := range buf {
				buf[i] += old[oldPos+int64(i)]
			}
			if _, err := w.Write(buf); err != nil {
				return err
			}
		}
		newPos += diffSize
		oldPos += diffSize

		if copySize > 0 {
			buf := make([]byte, copySize)
			if err := r.ReadData(buf); err != nil {
				return fmt.Errorf("%w: %v", ErrCorruptPatch, err)
			}
			if _, err := w.Write(buf); err != nil {
				return err
			}
		}
		newPos += copySize
		oldPos += skipSize

		if oldPos < 0 {
			return fmt.Errorf("%w: old_pos went negative after skip", ErrCorruptPatch)
		}
	}

	if haveSize && newPos != newSize {
		return fmt.Errorf("%w: reconstructed size %d does not match declared %d", ErrCorruptPatch, newPos, newSize)
	}

	return nil
}
