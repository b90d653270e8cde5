package stripedmap

import (
	"errors"
	"log/slog"
	"sync/atomic"
)

// Hasher hashes a key. It must return the same value for equal keys for
// the lifetime of the map.
type Hasher[K any] func(K) uint64

// Equal reports whether two keys are the same key.
type Equal[K any] func(a, b K) bool

// VisitorFunc is called with a mutable value and its key. Returning false
// stops the walk. A visitor must not call back into the map it visits.
type VisitorFunc[K, V any] func(value *V, key K) bool

// ReadOnlyVisitorFunc is called with a value and its key under a read lock.
// Returning false stops the walk.
type ReadOnlyVisitorFunc[K, V any] func(value V, key K) bool

// noCopy marks a struct that must not be copied after first use.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// container is the engine shared by MultiMap and Map.
//
// Lock protocol: a key's stripe is hash & (stripes-1). Bucket arrays are
// powers of two no smaller than the stripe table, so the stripe of a key is
// the same for every bucket array it can live in. store is replaced only
// while every stripe write lock is held; reading it under any single stripe
// lock is therefore safe and no re-validation of the bucket count is needed
// after the lock is taken.
type container[K, V any] struct {
	_ noCopy

	stripes *stripeTable
	store   *bucketStore[K, V]

	hash   Hasher[K]
	equal  Equal[K]
	alloc  Allocator
	logger *slog.Logger

	entrySize int
	size      atomic.Int64

	rehashState
}

func newContainer[K, V any](hash Hasher[K], equal Equal[K], opts []Option) (*container[K, V], error) {
	if hash == nil || equal == nil {
		panic("stripedmap: nil hash or equality function")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	numStripes := powerCeil(o.stripes)
	numBuckets := initialBucketCount(o.initialBuckets, numStripes)
	if err := allocate(o.allocator, bucketBytes[K, V](numBuckets)); err != nil {
		return nil, err
	}

	c := &container[K, V]{
		stripes:   newStripeTable(numStripes),
		store:     newBucketStore[K, V](numBuckets),
		hash:      hash,
		equal:     equal,
		alloc:     o.allocator,
		logger:    o.logger,
		entrySize: entryBytes[K, V](),
	}
	c.setMaxLoadFactor(o.maxLoadFactor)
	c.numBuckets.Store(int64(numBuckets))
	if !o.rehashDisabled {
		c.state.Store(stateEnabled)
	}
	return c, nil
}

// allocate asks a for bytes, normalising refusals to ErrAllocation.
func allocate(a Allocator, bytes int) error {
	err := a.Allocate(bytes)
	if err == nil || errors.Is(err, ErrAllocation) {
		return err
	}
	return ErrAllocation.WithCause(err)
}

// lockWrite locks the stripe covering hash and returns it.
func (c *container[K, V]) lockWrite(hash uint64) int {
	s := c.stripes.stripeForHash(hash)
	c.stripes.lockWrite(s)
	return s
}

// lockRead read-locks the stripe covering hash and returns it.
func (c *container[K, V]) lockRead(hash uint64) int {
	s := c.stripes.stripeForHash(hash)
	c.stripes.lockRead(s)
	return s
}

// grew records n new entries and runs the growth check.
func (c *container[K, V]) grew(n int) error {
	if n == 0 {
		return nil
	}
	c.size.Add(int64(n))
	return c.checkRehash()
}

// shrank records n removed entries.
func (c *container[K, V]) shrank(n int) {
	if n == 0 {
		return
	}
	c.size.Add(-int64(n))
	c.alloc.Free(n * c.entrySize)
}

func (c *container[K, V]) insert(key K, value V) error {
	if err := allocate(c.alloc, c.entrySize); err != nil {
		return err
	}
	h := c.hash(key)
	s := c.lockWrite(h)
	c.store.insert(c.store.indexOf(h), key, value)
	c.stripes.unlockWrite(s)
	return c.grew(1)
}

// insertUnique overwrites the value of an existing key or adds a new entry.
// It returns 1 when an entry was added.
func (c *container[K, V]) insertUnique(key K, value V) (int, error) {
	h := c.hash(key)
	s := c.lockWrite(h)
	idx := c.store.indexOf(h)
	if c.store.setMatching(idx, key, value, c.equal, false) > 0 {
		c.stripes.unlockWrite(s)
		return 0, nil
	}
	if err := allocate(c.alloc, c.entrySize); err != nil {
		c.stripes.unlockWrite(s)
		return 0, err
	}
	c.store.insert(idx, key, value)
	c.stripes.unlockWrite(s)
	return 1, c.grew(1)
}

func (c *container[K, V]) erase(key K, all bool) int {
	h := c.hash(key)
	s := c.lockWrite(h)
	n := c.store.eraseMatching(c.store.indexOf(h), key, c.equal, !all)
	c.stripes.unlockWrite(s)
	c.shrank(n)
	return n
}

func (c *container[K, V]) getFirst(key K) (V, int) {
	h := c.hash(key)
	s := c.lockRead(h)
	defer c.stripes.unlockRead(s)
	if v, ok := c.store.findFirst(c.store.indexOf(h), key, c.equal); ok {
		return *v, 1
	}
	var zero V
	return zero, 0
}

func (c *container[K, V]) getAll(key K) ([]V, int) {
	h := c.hash(key)
	s := c.lockRead(h)
	values := c.store.findAll(c.store.indexOf(h), key, c.equal)
	c.stripes.unlockRead(s)
	return values, len(values)
}

// setValue updates the first or every entry for key and returns how many
// were updated. When none exist it inserts one and returns 0.
func (c *container[K, V]) setValue(key K, value V, all bool) (int, error) {
	h := c.hash(key)
	s := c.lockWrite(h)
	idx := c.store.indexOf(h)
	if n := c.store.setMatching(idx, key, value, c.equal, all); n > 0 {
		c.stripes.unlockWrite(s)
		return n, nil
	}
	if err := allocate(c.alloc, c.entrySize); err != nil {
		c.stripes.unlockWrite(s)
		return 0, err
	}
	c.store.insert(idx, key, value)
	c.stripes.unlockWrite(s)
	return 0, c.grew(1)
}

// setComputedValue runs fn on the first or every entry for key. When none
// exist, fn runs on a zero value which is then inserted, and 0 is returned.
func (c *container[K, V]) setComputedValue(key K, fn VisitorFunc[K, V], all bool) (int, error) {
	h := c.hash(key)
	s := c.lockWrite(h)
	idx := c.store.indexOf(h)
	if n := c.store.visitMatching(idx, key, c.equal, all, fn); n != 0 {
		c.stripes.unlockWrite(s)
		return n, nil
	}
	if err := allocate(c.alloc, c.entrySize); err != nil {
		c.stripes.unlockWrite(s)
		return 0, err
	}
	var value V
	fn(&value, key)
	c.store.insert(idx, key, value)
	c.stripes.unlockWrite(s)
	return 0, c.grew(1)
}

// visitKey runs fn on the first or every entry for key under the write
// lock. It never inserts.
func (c *container[K, V]) visitKey(key K, fn VisitorFunc[K, V], all bool) int {
	h := c.hash(key)
	s := c.lockWrite(h)
	defer c.stripes.unlockWrite(s)
	return c.store.visitMatching(c.store.indexOf(h), key, c.equal, all, fn)
}

// visitKeyReadOnly is visitKey under the read lock.
func (c *container[K, V]) visitKeyReadOnly(key K, fn ReadOnlyVisitorFunc[K, V], all bool) int {
	h := c.hash(key)
	s := c.lockRead(h)
	defer c.stripes.unlockRead(s)
	return c.store.visitMatching(c.store.indexOf(h), key, c.equal, all, readOnly(fn))
}

func readOnly[K, V any](fn ReadOnlyVisitorFunc[K, V]) VisitorFunc[K, V] {
	return func(value *V, key K) bool {
		return fn(*value, key)
	}
}

// Clear removes every element. The bucket array keeps its size.
func (c *container[K, V]) Clear() {
	c.stripes.lockAllWrite()
	removed := 0
	for i := range c.store.buckets {
		removed += len(c.store.buckets[i].entries)
		c.store.buckets[i].entries = nil
	}
	c.stripes.unlockAllWrite()
	c.shrank(removed)
}

// Size returns the number of elements. Under concurrent mutation the value
// is a snapshot that may already be stale.
func (c *container[K, V]) Size() int {
	return int(c.size.Load())
}

// Empty reports whether Size is zero.
func (c *container[K, V]) Empty() bool {
	return c.Size() == 0
}

// BucketCount returns the current number of buckets.
func (c *container[K, V]) BucketCount() int {
	return int(c.numBuckets.Load())
}

// BucketIndex returns the bucket key currently hashes to.
func (c *container[K, V]) BucketIndex(key K) int {
	h := c.hash(key)
	s := c.lockRead(h)
	defer c.stripes.unlockRead(s)
	return c.store.indexOf(h)
}

// BucketSize returns the number of elements in bucket i.
// i must be less than BucketCount.
func (c *container[K, V]) BucketSize(i int) int {
	s := c.stripes.stripeOf(i)
	c.stripes.lockRead(s)
	defer c.stripes.unlockRead(s)
	return c.store.bucketLen(i)
}

// LoadFactor returns Size divided by BucketCount.
func (c *container[K, V]) LoadFactor() float64 {
	return float64(c.Size()) / float64(c.BucketCount())
}

// NumStripes returns the number of lock stripes.
func (c *container[K, V]) NumStripes() int {
	return c.stripes.len()
}

// Allocator returns the allocator the map was built with.
func (c *container[K, V]) Allocator() Allocator {
	return c.alloc
}

// HashFunction returns the key hasher.
func (c *container[K, V]) HashFunction() Hasher[K] {
	return c.hash
}

// EqualFunction returns the key equality function.
func (c *container[K, V]) EqualFunction() Equal[K] {
	return c.equal
}
