package stripedmap

import "unsafe"

// entry is one key/value element. Duplicated keys are separate entries.
type entry[K, V any] struct {
	key   K
	value V
}

// bucket holds the entries whose hash selects it. Order is unspecified.
type bucket[K, V any] struct {
	entries []entry[K, V]
}

// bucketStore is the bucket array. It performs no locking; callers hold the
// stripe lock covering the bucket they touch.
type bucketStore[K, V any] struct {
	buckets []bucket[K, V]
	mask    uint64
}

func newBucketStore[K, V any](numBuckets int) *bucketStore[K, V] {
	return &bucketStore[K, V]{
		buckets: make([]bucket[K, V], numBuckets),
		mask:    uint64(numBuckets - 1),
	}
}

// bucketBytes is the accounting size of a bucket array of n buckets.
func bucketBytes[K, V any](n int) int {
	return n * int(unsafe.Sizeof(bucket[K, V]{}))
}

// entryBytes is the accounting size of one entry.
func entryBytes[K, V any]() int {
	return int(unsafe.Sizeof(entry[K, V]{}))
}

// bucketIndexFor maps a hash to a bucket. numBuckets is a power of two.
func bucketIndexFor(hash uint64, numBuckets int) int {
	return int(hash & uint64(numBuckets-1))
}

func (s *bucketStore[K, V]) numBuckets() int {
	return len(s.buckets)
}

func (s *bucketStore[K, V]) indexOf(hash uint64) int {
	return int(hash & s.mask)
}

func (s *bucketStore[K, V]) insert(idx int, key K, value V) {
	b := &s.buckets[idx]
	b.entries = append(b.entries, entry[K, V]{key: key, value: value})
}

// eraseMatching removes entries equal to key and returns how many went.
func (s *bucketStore[K, V]) eraseMatching(idx int, key K, equal Equal[K], atMostOne bool) int {
	b := &s.buckets[idx]
	removed := 0
	for i := 0; i < len(b.entries); {
		if !equal(b.entries[i].key, key) {
			i++
			continue
		}
		last := len(b.entries) - 1
		b.entries[i] = b.entries[last]
		b.entries[last] = entry[K, V]{}
		b.entries = b.entries[:last]
		removed++
		if atMostOne {
			break
		}
	}
	if len(b.entries) == 0 {
		b.entries = nil
	}
	return removed
}

func (s *bucketStore[K, V]) findFirst(idx int, key K, equal Equal[K]) (*V, bool) {
	b := &s.buckets[idx]
	for i := range b.entries {
		if equal(b.entries[i].key, key) {
			return &b.entries[i].value, true
		}
	}
	return nil, false
}

func (s *bucketStore[K, V]) findAll(idx int, key K, equal Equal[K]) []V {
	var out []V
	for _, e := range s.buckets[idx].entries {
		if equal(e.key, key) {
			out = append(out, e.value)
		}
	}
	return out
}

// setMatching overwrites the value of matching entries and returns how
// many were updated.
func (s *bucketStore[K, V]) setMatching(idx int, key K, value V, equal Equal[K], all bool) int {
	b := &s.buckets[idx]
	n := 0
	for i := range b.entries {
		if !equal(b.entries[i].key, key) {
			continue
		}
		b.entries[i].value = value
		n++
		if !all {
			break
		}
	}
	return n
}

// visitMatching calls fn for matching entries and returns the number of
// calls, negated if fn asked to stop.
func (s *bucketStore[K, V]) visitMatching(idx int, key K, equal Equal[K], all bool, fn VisitorFunc[K, V]) int {
	b := &s.buckets[idx]
	n := 0
	for i := range b.entries {
		e := &b.entries[i]
		if !equal(e.key, key) {
			continue
		}
		n++
		if !fn(&e.value, e.key) {
			return -n
		}
		if !all {
			break
		}
	}
	return n
}

// visitBucket calls fn for every entry in the bucket. It returns the number
// of calls and whether fn asked to stop.
func (s *bucketStore[K, V]) visitBucket(idx int, fn VisitorFunc[K, V]) (int, bool) {
	b := &s.buckets[idx]
	for i := range b.entries {
		if !fn(&b.entries[i].value, b.entries[i].key) {
			return i + 1, true
		}
	}
	return len(b.entries), false
}

func (s *bucketStore[K, V]) bucketLen(idx int) int {
	return len(s.buckets[idx].entries)
}

// migrate builds a store of numBuckets buckets holding every entry of s.
// s itself is left untouched.
func (s *bucketStore[K, V]) migrate(numBuckets int, hash Hasher[K]) *bucketStore[K, V] {
	next := newBucketStore[K, V](numBuckets)
	for i := range s.buckets {
		for _, e := range s.buckets[i].entries {
			idx := next.indexOf(hash(e.key))
			next.buckets[idx].entries = append(next.buckets[idx].entries, e)
		}
	}
	return next
}
