package stripedmap

import "github.com/yndnr/stripedmap-go/pkg/hashfn"

// MultiMap is a concurrent hash map that allows several values per key.
//
// Buckets are grouped into a fixed number of stripes, each guarded by a
// reader/writer lock. Operations on keys in different stripes run in
// parallel; operations in the same stripe are serialized, readers sharing
// the lock. The bucket array grows online when the load factor is exceeded.
//
// A MultiMap must not be copied after first use.
type MultiMap[K, V any] struct {
	_ noCopy
	*container[K, V]
}

// New returns a MultiMap for a comparable key type, hashed with a per-map
// seeded hash and compared with ==.
func New[K comparable, V any](opts ...Option) (*MultiMap[K, V], error) {
	return NewFunc[K, V](hashfn.Comparable[K](), hashfn.Equal[K], opts...)
}

// NewFunc returns a MultiMap using the given hash and equality functions.
// It panics if either is nil.
func NewFunc[K, V any](hash Hasher[K], equal Equal[K], opts ...Option) (*MultiMap[K, V], error) {
	c, err := newContainer[K, V](hash, equal, opts)
	if err != nil {
		return nil, err
	}
	return &MultiMap[K, V]{container: c}, nil
}

// Insert adds an element. Existing elements for key are kept.
//
// A non-nil error wrapping ErrAllocation means nothing was inserted. An
// error wrapping ErrRehashFailed means the element was inserted but the
// growth it triggered did not happen.
func (m *MultiMap[K, V]) Insert(key K, value V) error {
	return m.insert(key, value)
}

// InsertBulk adds every item, taking each stripe lock once. Other
// goroutines may observe part of the batch. It returns the number inserted.
func (m *MultiMap[K, V]) InsertBulk(items []KV[K, V]) (int, error) {
	return m.insertBulk(items, false)
}

// EraseFirst removes one element for key and returns 1, or 0 if none.
func (m *MultiMap[K, V]) EraseFirst(key K) int {
	return m.erase(key, false)
}

// EraseAll removes every element for key and returns how many.
func (m *MultiMap[K, V]) EraseAll(key K) int {
	return m.erase(key, true)
}

// EraseBulkFirst removes one element for each key and returns the total.
func (m *MultiMap[K, V]) EraseBulkFirst(keys []K) int {
	return m.eraseBulk(keys, false)
}

// EraseBulkAll removes every element for each key and returns the total.
func (m *MultiMap[K, V]) EraseBulkAll(keys []K) int {
	return m.eraseBulk(keys, true)
}

// GetValueFirst returns a value for key and 1, or the zero value and 0.
func (m *MultiMap[K, V]) GetValueFirst(key K) (V, int) {
	return m.getFirst(key)
}

// GetValueAll returns every value for key and their count.
// The slice is nil when the count is 0.
func (m *MultiMap[K, V]) GetValueAll(key K) ([]V, int) {
	return m.getAll(key)
}

// SetValueFirst overwrites one value for key and returns 1. If key is
// absent it inserts (key, value) and returns 0.
func (m *MultiMap[K, V]) SetValueFirst(key K, value V) (int, error) {
	return m.setValue(key, value, false)
}

// SetValueAll overwrites every value for key and returns how many. If key
// is absent it inserts (key, value) and returns 0.
func (m *MultiMap[K, V]) SetValueAll(key K, value V) (int, error) {
	return m.setValue(key, value, true)
}

// SetComputedValueFirst calls fn on one value for key and returns 1, or -1
// if fn returned false. If key is absent, fn is called on a zero value,
// the result is inserted and 0 is returned.
func (m *MultiMap[K, V]) SetComputedValueFirst(key K, fn VisitorFunc[K, V]) (int, error) {
	return m.setComputedValue(key, fn, false)
}

// SetComputedValueAll calls fn on every value for key until it returns
// false. It returns the number of calls, negated if fn stopped early. If key
// is absent, fn is called on a zero value, the result is inserted and 0 is
// returned.
func (m *MultiMap[K, V]) SetComputedValueAll(key K, fn VisitorFunc[K, V]) (int, error) {
	return m.setComputedValue(key, fn, true)
}

// VisitKey calls fn on every value for key under the write lock until fn
// returns false. It returns the number of calls, negated if fn stopped
// early. Absent keys are not inserted.
func (m *MultiMap[K, V]) VisitKey(key K, fn VisitorFunc[K, V]) int {
	return m.visitKey(key, fn, true)
}

// VisitKeyReadOnly is VisitKey under the read lock.
func (m *MultiMap[K, V]) VisitKeyReadOnly(key K, fn ReadOnlyVisitorFunc[K, V]) int {
	return m.visitKeyReadOnly(key, fn, true)
}
