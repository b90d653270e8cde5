package stripedmap

import (
	"testing"

	"github.com/yndnr/stripedmap-go/pkg/hashfn"
)

// newIntMap returns a MultiMap whose int keys hash to themselves, so a key's
// bucket is key & (BucketCount-1) and its stripe is key & (NumStripes-1).
func newIntMap(t testing.TB, opts ...Option) *MultiMap[int, string] {
	t.Helper()
	m, err := NewFunc[int, string](hashfn.Identity[int], hashfn.Equal[int], opts...)
	if err != nil {
		t.Fatalf("NewFunc() error = %v", err)
	}
	return m
}

func newStringMap(t testing.TB, opts ...Option) *MultiMap[string, int] {
	t.Helper()
	m, err := New[string, int](opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return m
}

func mustInsert[K, V any](t testing.TB, m *MultiMap[K, V], key K, value V) {
	t.Helper()
	if err := m.Insert(key, value); err != nil {
		t.Fatalf("Insert(%v) error = %v", key, err)
	}
}

// checkInvariants verifies the structural properties that must hold
// whenever no operation is in flight.
func checkInvariants[K, V any](t testing.TB, c *container[K, V]) {
	t.Helper()

	n := c.BucketCount()
	if n < 2 || n&(n-1) != 0 {
		t.Errorf("BucketCount() = %d, want a power of two >= 2", n)
	}
	if n%c.NumStripes() != 0 {
		t.Errorf("BucketCount() = %d is not a multiple of NumStripes() = %d", n, c.NumStripes())
	}
	if n != c.store.numBuckets() {
		t.Errorf("BucketCount() = %d, store has %d buckets", n, c.store.numBuckets())
	}

	total := 0
	for i := 0; i < n; i++ {
		total += c.BucketSize(i)
		for _, e := range c.store.buckets[i].entries {
			if got := bucketIndexFor(c.hash(e.key), n); got != i {
				t.Errorf("entry %v in bucket %d, hashes to %d", e.key, i, got)
			}
		}
	}
	if total != c.Size() {
		t.Errorf("sum of bucket sizes = %d, Size() = %d", total, c.Size())
	}
}
