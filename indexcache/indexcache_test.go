package indexcache

import (
	"testing"

	"github.com/binarydelta/bsdiff/suffixarray"
)

func TestCacheGetPutRoundTrip(t *testing.T) {
	c := New(4)
	key := Fingerprint64([]byte("hello world"))
	if _, ok := c.Get(key); ok {
		t.Fatal("Get on empty cache reported a hit")
	}

	ix := suffixarray.Build([]byte("hello world"))
	c.Put(key, ix)

	got, ok := c.Get(key)
	if !ok {
		t.Fatal("Get after Put reported a miss")
	}
	if got != ix {
		t.Fatal("Get returned a different index than was stored")
	}
}

func TestCacheDisabledWithNonPositiveSize(t *testing.T) {
	c := New(0)
	key := Fingerprint64([]byte("x"))
	c.Put(key, suffixarray.Build([]byte("x")))
	if _, ok := c.Get(key); ok {
		t.Fatal("a zero-size cache should never report a hit")
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New(2)
	a := Fingerprint64([]byte("a"))
	b := Fingerprint64([]byte("b"))
	d := Fingerprint64([]byte("d"))

	c.Put(a, suffixarray.Build([]byte("a")))
	c.Put(b, suffixarray.Build([]byte("b")))
	c.Put(d, suffixarray.Build([]byte("d"))) // evicts a, the least recently used

	if _, ok := c.Get(a); ok {
		t.Fatal("expected a to have been evicted")
	}
	if _, ok := c.Get(b); !ok {
		t.Fatal("expected b to still be cached")
	}
	if _, ok := c.Get(d); !ok {
		t.Fatal("expected d to still be cached")
	}
}

func TestFingerprintIsDeterministic(t *testing.T) {
	a := Fingerprint64([]byte("same content"))
	b := Fingerprint64([]byte("same content"))
	if a != b {
		t.Fatalf("Fingerprint64 is not deterministic: %d != %d", a, b)
	}
}
