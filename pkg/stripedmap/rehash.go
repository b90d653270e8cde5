package stripedmap

import (
	"math"
	"sync/atomic"
	"time"
)

const (
	stateInProgress int32 = 1 << iota
	stateEnabled
)

// maxBucketCount caps growth so a tiny load factor cannot overflow int.
// Tests lower it.
var maxBucketCount = 1 << 30

// rehashState is the coordinator's shared state. It is read without locks.
type rehashState struct {
	state          atomic.Int32
	maxLoadBits    atomic.Uint64
	numBuckets     atomic.Int64
	rehashes       atomic.Uint64
	rehashFailures atomic.Uint64
}

func (r *rehashState) setMaxLoadFactor(f float64) {
	r.maxLoadBits.Store(math.Float64bits(f))
}

// MaxLoadFactor returns the load factor above which the map grows.
func (r *rehashState) MaxLoadFactor() float64 {
	return math.Float64frombits(r.maxLoadBits.Load())
}

// EnableRehash turns automatic and explicit growth on.
func (r *rehashState) EnableRehash() {
	r.state.Or(stateEnabled)
}

// DisableRehash turns growth off. A rehash already running completes.
func (r *rehashState) DisableRehash() {
	r.state.And(^stateEnabled)
}

// IsRehashEnabled reports whether growth is enabled.
func (r *rehashState) IsRehashEnabled() bool {
	return r.state.Load()&stateEnabled != 0
}

// CanRehash reports whether growth is enabled and no rehash is running.
func (r *rehashState) CanRehash() bool {
	return r.state.Load() == stateEnabled
}

// SetMaxLoadFactor changes the growth threshold and grows the map right
// away if it is now over the new threshold.
func (c *container[K, V]) SetMaxLoadFactor(f float64) error {
	if !(f > 0) || math.IsInf(f, 1) {
		return ErrInvalidLoadFactor
	}
	c.setMaxLoadFactor(f)
	return c.checkRehash()
}

// Rehash grows the bucket array to at least minBuckets buckets (rounded up
// to a power of two). It does nothing when growth is disabled, when another
// rehash is running, or when the map already has that many buckets.
func (c *container[K, V]) Rehash(minBuckets int) error {
	if !c.IsRehashEnabled() {
		return nil
	}
	n := initialBucketCount(min(minBuckets, maxBucketCount), c.stripes.len())
	if n <= c.BucketCount() {
		return nil
	}
	return c.rehash(n)
}

// overloaded reports whether size elements overflow numBuckets buckets.
func (c *container[K, V]) overloaded(size int64, numBuckets int) bool {
	return float64(size) > c.MaxLoadFactor()*float64(numBuckets)
}

// targetBuckets is the smallest valid bucket count that holds size
// elements within the max load factor.
func (c *container[K, V]) targetBuckets(size int64) int {
	want := math.Ceil(float64(size) / c.MaxLoadFactor())
	if want > float64(maxBucketCount) {
		want = float64(maxBucketCount)
	}
	return initialBucketCount(int(want), c.stripes.len())
}

// checkRehash grows the map if it is over its load factor. It runs after
// the caller has released its stripe lock. A map already at the largest
// bucket count it can reach stays overloaded without taking any lock.
func (c *container[K, V]) checkRehash() error {
	if !c.CanRehash() {
		return nil
	}
	size := c.size.Load()
	current := c.BucketCount()
	if !c.overloaded(size, current) {
		return nil
	}
	target := c.targetBuckets(size)
	if target <= current {
		return nil
	}
	return c.rehash(target)
}

// rehash moves every element into a new array of numBuckets buckets.
// Only one rehash runs at a time; a caller that loses the race returns nil.
func (c *container[K, V]) rehash(numBuckets int) error {
	if !c.state.CompareAndSwap(stateEnabled, stateEnabled|stateInProgress) {
		return nil
	}
	start := time.Now()
	from, err := c.swapStore(numBuckets)
	c.state.And(^stateInProgress)

	switch {
	case err != nil:
		c.rehashFailures.Add(1)
		c.logger.Warn("stripedmap: rehash failed",
			"from", from,
			"to", numBuckets,
			"error", err,
		)
		return ErrRehashFailed.WithCause(err)
	case from < numBuckets:
		c.rehashes.Add(1)
		c.logger.Debug("stripedmap: rehash completed",
			"from", from,
			"to", numBuckets,
			"size", c.Size(),
			"elapsed", time.Since(start),
		)
	}
	return nil
}

// swapStore migrates the elements under every stripe lock and returns the
// previous bucket count. A failed allocation leaves the old store in place.
func (c *container[K, V]) swapStore(numBuckets int) (int, error) {
	c.stripes.lockAllWrite()
	defer c.stripes.unlockAllWrite()

	old := c.store
	from := old.numBuckets()
	if numBuckets <= from {
		return from, nil
	}
	if err := allocate(c.alloc, bucketBytes[K, V](numBuckets)); err != nil {
		return from, err
	}
	c.store = old.migrate(numBuckets, c.hash)
	c.numBuckets.Store(int64(numBuckets))
	c.alloc.Free(bucketBytes[K, V](from))
	return from, nil
}
