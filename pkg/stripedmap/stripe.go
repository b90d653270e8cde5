package stripedmap

import (
	"sync"
	"unsafe"

	"golang.org/x/sys/cpu"
)

const cacheLineSize = unsafe.Sizeof(cpu.CacheLinePad{})

// paddedRWMutex keeps each stripe lock on its own cache line.
type paddedRWMutex struct {
	sync.RWMutex
	_ [cacheLineSize - unsafe.Sizeof(sync.RWMutex{})%cacheLineSize]byte
}

// stripeTable is a fixed set of reader/writer locks. Bucket i is guarded by
// stripe i & mask. The table never changes size.
type stripeTable struct {
	stripes []paddedRWMutex
	mask    uint64
}

// newStripeTable returns a table with n stripes; n is a power of two.
func newStripeTable(n int) *stripeTable {
	return &stripeTable{
		stripes: make([]paddedRWMutex, n),
		mask:    uint64(n - 1),
	}
}

func (t *stripeTable) len() int {
	return len(t.stripes)
}

// stripeOf returns the stripe guarding bucketIndex.
func (t *stripeTable) stripeOf(bucketIndex int) int {
	return int(uint64(bucketIndex) & t.mask)
}

// stripeForHash returns the stripe guarding the bucket that hash selects in
// any bucket array of at least len() buckets.
func (t *stripeTable) stripeForHash(hash uint64) int {
	return int(hash & t.mask)
}

func (t *stripeTable) lockRead(i int)    { t.stripes[i].RLock() }
func (t *stripeTable) unlockRead(i int)  { t.stripes[i].RUnlock() }
func (t *stripeTable) lockWrite(i int)   { t.stripes[i].Lock() }
func (t *stripeTable) unlockWrite(i int) { t.stripes[i].Unlock() }

// lockAllWrite takes every write lock in ascending stripe order.
func (t *stripeTable) lockAllWrite() {
	for i := range t.stripes {
		t.stripes[i].Lock()
	}
}

// unlockAllWrite releases every write lock.
func (t *stripeTable) unlockAllWrite() {
	for i := len(t.stripes) - 1; i >= 0; i-- {
		t.stripes[i].Unlock()
	}
}
