package stripedmap

import "github.com/yndnr/stripedmap-go/pkg/hashfn"

// Map is the unique-key form of MultiMap: each key holds at most one value.
// It shares MultiMap's locking and growth behaviour.
//
// A Map must not be copied after first use.
type Map[K, V any] struct {
	_ noCopy
	*container[K, V]
}

// NewMap returns a Map for a comparable key type.
func NewMap[K comparable, V any](opts ...Option) (*Map[K, V], error) {
	return NewMapFunc[K, V](hashfn.Comparable[K](), hashfn.Equal[K], opts...)
}

// NewMapFunc returns a Map using the given hash and equality functions.
// It panics if either is nil.
func NewMapFunc[K, V any](hash Hasher[K], equal Equal[K], opts ...Option) (*Map[K, V], error) {
	c, err := newContainer[K, V](hash, equal, opts)
	if err != nil {
		return nil, err
	}
	return &Map[K, V]{container: c}, nil
}

// Insert stores value for key. It returns 1 if key was added and 0 if an
// existing value was replaced.
func (m *Map[K, V]) Insert(key K, value V) (int, error) {
	return m.insertUnique(key, value)
}

// InsertBulk stores every item and returns the number of keys added.
// A key repeated in items keeps the last value.
func (m *Map[K, V]) InsertBulk(items []KV[K, V]) (int, error) {
	return m.insertBulk(items, true)
}

// Erase removes key and returns 1, or 0 if it was absent.
func (m *Map[K, V]) Erase(key K) int {
	return m.erase(key, false)
}

// EraseBulk removes every key and returns how many were present.
func (m *Map[K, V]) EraseBulk(keys []K) int {
	return m.eraseBulk(keys, false)
}

// GetValue returns the value for key and 1, or the zero value and 0.
func (m *Map[K, V]) GetValue(key K) (V, int) {
	return m.getFirst(key)
}

// SetComputedValue calls fn on the value for key and returns 1, or -1 if
// fn returned false. If key is absent, fn is called on a zero value, the
// result is inserted and 0 is returned.
func (m *Map[K, V]) SetComputedValue(key K, fn VisitorFunc[K, V]) (int, error) {
	return m.setComputedValue(key, fn, false)
}

// Update calls fn on the value for key under the write lock and returns 1,
// -1 if fn returned false, or 0 if key is absent.
func (m *Map[K, V]) Update(key K, fn VisitorFunc[K, V]) int {
	return m.visitKey(key, fn, false)
}
