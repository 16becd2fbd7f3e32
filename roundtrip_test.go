package bsdiff

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/binarydelta/bsdiff/container"
	"github.com/binarydelta/bsdiff/suffixarray"
)

// roundTrip diffs old against newBuf using the given container format and
// then applies the resulting patch back to old, returning the
// reconstructed buffer.
func roundTrip(t *testing.T, format container.Format, old, newBuf []byte) []byte {
	t.Helper()

	ix := suffixarray.Build(old)

	var patch bytes.Buffer
	w, err := container.NewWriter(format, &patch, 0)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := generateDiff(ix, old, newBuf, w); err != nil {
		t.Fatalf("generateDiff: %v", err)
	}
	if err := w.Close(int64(len(newBuf))); err != nil {
		t.Fatalf("Writer.Close: %v", err)
	}

	r, err := container.NewReader(format, bytes.NewReader(patch.Bytes()))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	var out bytes.Buffer
	if err := applyPatch(old, r, &out); err != nil {
		t.Fatalf("applyPatch: %v", err)
	}
	return out.Bytes()
}

func testRoundTripScenario(t *testing.T, name string, old, newBuf []byte) {
	t.Run(name, func(t *testing.T) {
		for _, format := range []container.Format{container.Classic, container.Endsley} {
			got := roundTrip(t, format, old, newBuf)
			if !bytes.Equal(got, newBuf) {
				t.Errorf("format %d: round trip mismatch\n got: %q\nwant: %q", format, got, newBuf)
			}
		}
	})
}

func TestRoundTripIdentity(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	testRoundTripScenario(t, "identity", data, data)
}

func TestRoundTripEmptyOld(t *testing.T) {
	testRoundTripScenario(t, "empty-old", nil, []byte("brand new content"))
}

func TestRoundTripEmptyNew(t *testing.T) {
	testRoundTripScenario(t, "empty-new", []byte("some old content"), nil)
}

func TestRoundTripBothEmpty(t *testing.T) {
	testRoundTripScenario(t, "both-empty", nil, nil)
}

func TestRoundTripSingleByteSubstitution(t *testing.T) {
	old := []byte("abcdefghijklmnopqrstuvwxyz")
	newBuf := append([]byte(nil), old...)
	newBuf[10] = 'X'
	testRoundTripScenario(t, "single-byte-substitution", old, newBuf)
}

func TestRoundTripInsertion(t *testing.T) {
	old := []byte("the quick brown fox")
	newBuf := []byte("the very quick brown fox indeed")
	testRoundTripScenario(t, "insertion", old, newBuf)
}

func TestRoundTripDeletion(t *testing.T) {
	old := []byte("the quick brown fox jumps over the lazy dog")
	newBuf := []byte("the brown fox jumps the dog")
	testRoundTripScenario(t, "deletion", old, newBuf)
}

func TestRoundTripLargeBlockMove(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	blockA := randomBlock(r, 4000)
	blockB := randomBlock(r, 4000)
	old := append(append([]byte{}, blockA...), blockB...)
	newBuf := append(append([]byte{}, blockB...), blockA...)
	testRoundTripScenario(t, "large-block-move", old, newBuf)
}

func TestRoundTripRandomUnrelatedBuffers(t *testing.T) {
	r := rand.New(rand.NewSource(99))
	old := randomBlock(r, 2000)
	newBuf := randomBlock(r, 2000)
	testRoundTripScenario(t, "random-unrelated", old, newBuf)
}

func TestRoundTripRepeatedBytes(t *testing.T) {
	old := bytes.Repeat([]byte{'a'}, 5000)
	newBuf := bytes.Repeat([]byte{'a'}, 4000)
	testRoundTripScenario(t, "repeated-bytes", old, newBuf)
}

func randomBlock(r *rand.Rand, n int) []byte {
	b := make([]byte, n)
	r.Read(b)
	return b
}
