package stripedmap

import (
	"fmt"
	"sync/atomic"
)

// Allocator accounts for the memory a map uses for its bucket array and
// its entries. Implementations must be safe for concurrent use.
//
// The Go runtime owns the actual memory; an Allocator decides whether a
// request may proceed and keeps track of what is outstanding.
type Allocator interface {
	// Allocate reserves bytes or returns an error wrapping ErrAllocation.
	Allocate(bytes int) error

	// Free returns bytes previously reserved with Allocate.
	Free(bytes int)
}

// HeapAllocator accepts every request.
type HeapAllocator struct{}

// Allocate always succeeds.
func (HeapAllocator) Allocate(int) error { return nil }

// Free is a no-op.
func (HeapAllocator) Free(int) {}

// LimitAllocator enforces a byte budget shared by everything allocated
// through it.
type LimitAllocator struct {
	limit atomic.Int64
	used  atomic.Int64
}

// NewLimitAllocator returns an allocator that refuses requests once limit
// bytes are outstanding.
func NewLimitAllocator(limit int64) *LimitAllocator {
	a := &LimitAllocator{}
	a.limit.Store(limit)
	return a
}

// Allocate reserves bytes if they fit in the remaining budget.
func (a *LimitAllocator) Allocate(bytes int) error {
	n := int64(bytes)
	for {
		used, limit := a.used.Load(), a.limit.Load()
		if used+n > limit {
			return ErrAllocation.WithCause(fmt.Errorf("requested %d bytes, %d of %d in use", n, used, limit))
		}
		if a.used.CompareAndSwap(used, used+n) {
			return nil
		}
	}
}

// Free releases bytes back to the budget.
func (a *LimitAllocator) Free(bytes int) {
	a.used.Add(-int64(bytes))
}

// Used returns the number of bytes currently reserved.
func (a *LimitAllocator) Used() int64 {
	return a.used.Load()
}

// Limit returns the configured budget.
func (a *LimitAllocator) Limit() int64 {
	return a.limit.Load()
}

// SetLimit changes the budget. Outstanding reservations are kept.
func (a *LimitAllocator) SetLimit(limit int64) {
	a.limit.Store(limit)
}
