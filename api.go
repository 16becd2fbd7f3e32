package bsdiff

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/binarydelta/bsdiff/container"
	"github.com/binarydelta/bsdiff/indexcache"
	"github.com/binarydelta/bsdiff/suffixarray"
)

var (
	cachesMu sync.Mutex
	caches   = map[int]*indexcache.Cache{}
)

func cacheFor(cfg Config) *indexcache.Cache {
	size := cfg.cacheSize()
	cachesMu.Lock()
	defer cachesMu.Unlock()
	c, ok := caches[size]
	if !ok {
		c = indexcache.New(size)
		caches[size] = c
	}
	return c
}

// Diff computes a patch that transforms the contents of oldPath into the
// contents of newPath, writing it in the given container format. If
// patchPath is empty, a temporary file is created alongside oldPath and its
// path is returned; callers own deletion of that file.
//
// On any error, a patch file created by this call is removed before
// returning, so callers never observe a partially written patch.
func Diff(oldPath, newPath, patchPath string, format Format, opts ...Option) (string, error) {
	cfg := newConfig(opts...)
	if format > FormatAuto {
		return "", ErrInvalidFormat
	}

	old, err := os.ReadFile(oldPath)
	if err != nil {
		return "", err
	}
	newBuf, err := os.ReadFile(newPath)
	if err != nil {
		return "", err
	}
	if err := checkSize(old); err != nil {
		return "", err
	}
	if err := checkSize(newBuf); err != nil {
		return "", err
	}

	ix, err := loadOrBuildIndex(old, cfg)
	if err != nil {
		return "", err
	}

	out, err := openOutput(patchPath, filepath.Dir(oldPath), "bsdiff-patch-*")
	if err != nil {
		return "", err
	}

	w, err := container.NewWriter(containerFormat(format), out, cfg.CompressionLevel)
	if err != nil {
		out.Close()
		cleanupOnError(out.Name())
		return "", err
	}

	if err := generateDiff(ix, old, newBuf, w); err != nil {
		out.Close()
		cleanupOnError(out.Name())
		return "", err
	}
	if err := w.Close(int64(len(newBuf))); err != nil {
		out.Close()
		cleanupOnError(out.Name())
		return "", fmt.Errorf("%w: %v", ErrCorruptPatch, err)
	}
	if err := out.Close(); err != nil {
		cleanupOnError(out.Name())
		return "", err
	}

	return out.Name(), nil
}

// Patch applies the patch at patchPath to the contents of oldPath,
// producing newPath. If newPath is empty, a temporary file is created
// alongside oldPath and its path is returned. Passing FormatAuto detects
// the container format from the patch file's own magic bytes instead of
// requiring the caller to name one.
//
// On any error (including a corrupt or truncated patch), a new file
// created by this call is removed before returning.
func Patch(oldPath, newPath, patchPath string, format Format, opts ...Option) (string, error) {
	if format > FormatAuto {
		return "", ErrInvalidFormat
	}
	old, err := os.ReadFile(oldPath)
	if err != nil {
		return "", err
	}
	patchFile, err := os.Open(patchPath)
	if err != nil {
		return "", err
	}
	defer patchFile.Close()

	r, err := openPatchReader(format, patchFile)
	if err != nil {
		if errors.Is(err, container.ErrCorrupt) || errors.Is(err, container.ErrInvalidFormat) {
			return "", fmt.Errorf("%w: %v", ErrCorruptPatch, err)
		}
		return "", err
	}
	defer r.Close()

	out, err := openOutput(newPath, filepath.Dir(oldPath), "bsdiff-new-*")
	if err != nil {
		return "", err
	}

	if err := applyPatch(old, r, out); err != nil {
		out.Close()
		cleanupOnError(out.Name())
		return "", err
	}
	if err := out.Close(); err != nil {
		cleanupOnError(out.Name())
		return "", err
	}

	return out.Name(), nil
}

// Index builds and persists a suffix-array index over the contents of
// oldPath, for later reuse via WithIndexPath. If indexPath is empty, a
// temporary file is created alongside oldPath.
func Index(oldPath, indexPath string, opts ...Option) (string, error) {
	old, err := os.ReadFile(oldPath)
	if err != nil {
		return "", err
	}
	if err := checkSize(old); err != nil {
		return "", err
	}

	ix := suffixarray.Build(old)

	out, err := openOutput(indexPath, filepath.Dir(oldPath), "bsdiff-index-*")
	if err != nil {
		return "", err
	}

	if err := suffixarray.WriteIndex(out, ix); err != nil {
		out.Close()
		cleanupOnError(out.Name())
		return "", err
	}
	if err := out.Close(); err != nil {
		cleanupOnError(out.Name())
		return "", err
	}

	return out.Name(), nil
}

func loadOrBuildIndex(old []byte, cfg Config) (*suffixarray.Index, error) {
	if cfg.IndexPath != "" {
		f, err := os.Open(cfg.IndexPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		ix, err := suffixarray.ReadIndex(f, len(old))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptIndex, err)
		}
		return ix, nil
	}

	cache := cacheFor(cfg)
	key := indexcache.Fingerprint64(old)
	if ix, ok := cache.Get(key); ok {
		return ix, nil
	}

	ix := suffixarray.Build(old)
	cache.Put(key, ix)
	return ix, nil
}

func containerFormat(f Format) container.Format {
	if f == FormatEndsley {
		return container.Endsley
	}
	return container.Classic
}

// openPatchReader opens a container.Reader over r, detecting the format
// from r's magic bytes when format is FormatAuto and using the named
// format otherwise.
func openPatchReader(format Format, r io.Reader) (container.Reader, error) {
	if format != FormatAuto {
		return container.NewReader(containerFormat(format), r)
	}
	detected, rest, err := container.DetectFormat(r)
	if err != nil {
		return nil, err
	}
	return container.NewReader(detected, rest)
}

func checkSize(buf []byte) error {
	const maxSize = 1<<63 - 1
	if len(buf) > maxSize {
		return ErrTooLarge
	}
	return nil
}

func openOutput(path, fallbackDir, pattern string) (*os.File, error) {
	if path != "" {
		return os.Create(path)
	}
	return os.CreateTemp(fallbackDir, pattern)
}

// cleanupOnError removes a partially written output file after any failure,
// whether its path was supplied by the caller or allocated as a temp file,
// so callers never observe a partial artifact.
func cleanupOnError(path string) {
	os.Remove(path)
}
