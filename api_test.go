package bsdiff

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, dir, name string, contents []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, contents, 0o600); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
	return path
}

func TestDiffPatchFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeTempFile(t, dir, "old.bin", []byte("the quick brown fox jumps over the lazy dog"))
	newPath := writeTempFile(t, dir, "new.bin", []byte("the quick brown fox leaps over a lazy dog"))

	for _, format := range []Format{FormatClassic, FormatEndsley} {
		patchPath, err := Diff(oldPath, newPath, "", format)
		if err != nil {
			t.Fatalf("Diff: %v", err)
		}
		defer os.Remove(patchPath)

		outPath, err := Patch(oldPath, "", patchPath, format)
		if err != nil {
			t.Fatalf("Patch: %v", err)
		}
		defer os.Remove(outPath)

		got, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatalf("ReadFile(%s): %v", outPath, err)
		}
		want, err := os.ReadFile(newPath)
		if err != nil {
			t.Fatalf("ReadFile(%s): %v", newPath, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("format %d: round trip mismatch\n got: %q\nwant: %q", format, got, want)
		}
	}
}

func TestPatchAutoDetectsFormat(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeTempFile(t, dir, "old.bin", []byte("the quick brown fox jumps over the lazy dog"))
	newPath := writeTempFile(t, dir, "new.bin", []byte("the quick brown fox leaps over a lazy dog"))

	for _, format := range []Format{FormatClassic, FormatEndsley} {
		patchPath, err := Diff(oldPath, newPath, "", format)
		if err != nil {
			t.Fatalf("Diff: %v", err)
		}
		defer os.Remove(patchPath)

		outPath, err := Patch(oldPath, "", patchPath, FormatAuto)
		if err != nil {
			t.Fatalf("Patch(FormatAuto) on a %d-formatted patch: %v", format, err)
		}
		defer os.Remove(outPath)

		got, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatalf("ReadFile(%s): %v", outPath, err)
		}
		want, err := os.ReadFile(newPath)
		if err != nil {
			t.Fatalf("ReadFile(%s): %v", newPath, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("format %d: auto-detected round trip mismatch\n got: %q\nwant: %q", format, got, want)
		}
	}
}

func TestDiffUsesExplicitPatchPath(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeTempFile(t, dir, "old.bin", []byte("hello world"))
	newPath := writeTempFile(t, dir, "new.bin", []byte("hello there world"))
	patchPath := filepath.Join(dir, "explicit.patch")

	got, err := Diff(oldPath, newPath, patchPath, FormatClassic)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if got != patchPath {
		t.Fatalf("Diff returned %q, want %q", got, patchPath)
	}
	if _, err := os.Stat(patchPath); err != nil {
		t.Fatalf("expected patch file to exist: %v", err)
	}
}

func TestDiffRemovesPartialOutputOnError(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeTempFile(t, dir, "old.bin", []byte("hello world"))
	missingNewPath := filepath.Join(dir, "does-not-exist.bin")

	_, err := Diff(oldPath, missingNewPath, "", FormatClassic)
	if err == nil {
		t.Fatal("Diff with a missing new file did not return an error")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if e.Name() != "old.bin" {
			t.Errorf("unexpected leftover file after failed Diff: %s", e.Name())
		}
	}
}

func TestIndexAndDiffWithIndexPath(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeTempFile(t, dir, "old.bin", []byte("abcdefghijklmnopqrstuvwxyz0123456789"))
	newPath := writeTempFile(t, dir, "new.bin", []byte("abcdefghijklmnop9876543210XYZ0123456789"))

	indexPath, err := Index(oldPath, "")
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	defer os.Remove(indexPath)

	patchPath, err := Diff(oldPath, newPath, "", FormatClassic, WithIndexPath(indexPath))
	if err != nil {
		t.Fatalf("Diff with WithIndexPath: %v", err)
	}
	defer os.Remove(patchPath)

	outPath, err := Patch(oldPath, "", patchPath, FormatClassic)
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	defer os.Remove(outPath)

	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want, err := os.ReadFile(newPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("round trip via persisted index mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestPatchRejectsCorruptPatchFile(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeTempFile(t, dir, "old.bin", []byte("hello world"))
	patchPath := writeTempFile(t, dir, "bad.patch", []byte("not a real patch file"))

	_, err := Patch(oldPath, "", patchPath, FormatClassic)
	if err == nil {
		t.Fatal("Patch accepted a garbage patch file")
	}
}
