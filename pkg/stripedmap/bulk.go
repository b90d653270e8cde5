package stripedmap

import (
	"cmp"
	"slices"
)

// KV is a key/value pair for bulk insertion.
type KV[K, V any] struct {
	Key   K
	Value V
}

// hashed pairs an input position with its hash and stripe.
type hashed struct {
	pos    int
	hash   uint64
	stripe int
}

// byStripe hashes n keys and orders them by stripe so each stripe lock is
// taken once.
func (c *container[K, V]) byStripe(n int, key func(i int) K) []hashed {
	hs := make([]hashed, n)
	for i := range hs {
		h := c.hash(key(i))
		hs[i] = hashed{pos: i, hash: h, stripe: c.stripes.stripeForHash(h)}
	}
	slices.SortStableFunc(hs, func(a, b hashed) int {
		return cmp.Compare(a.stripe, b.stripe)
	})
	return hs
}

// forEachStripe calls fn with each run of hs that shares a stripe, holding
// that stripe's write lock.
func (c *container[K, V]) forEachStripe(hs []hashed, fn func(run []hashed)) {
	for start := 0; start < len(hs); {
		end := start + 1
		for end < len(hs) && hs[end].stripe == hs[start].stripe {
			end++
		}
		s := hs[start].stripe
		c.stripes.lockWrite(s)
		fn(hs[start:end])
		c.stripes.unlockWrite(s)
		start = end
	}
}

// insertBulk adds every item. The whole batch is reserved with the
// allocator up front; nothing is inserted if that fails. With unique set,
// items whose key already exists update the value instead.
func (c *container[K, V]) insertBulk(items []KV[K, V], unique bool) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	if err := allocate(c.alloc, len(items)*c.entrySize); err != nil {
		return 0, err
	}

	hs := c.byStripe(len(items), func(i int) K { return items[i].Key })
	inserted := 0
	c.forEachStripe(hs, func(run []hashed) {
		for _, h := range run {
			item := items[h.pos]
			idx := c.store.indexOf(h.hash)
			if unique && c.store.setMatching(idx, item.Key, item.Value, c.equal, false) > 0 {
				continue
			}
			c.store.insert(idx, item.Key, item.Value)
			inserted++
		}
	})

	if unused := len(items) - inserted; unused > 0 {
		c.alloc.Free(unused * c.entrySize)
	}
	return inserted, c.grew(inserted)
}

// eraseBulk removes the first or every element for each key and returns
// the total removed.
func (c *container[K, V]) eraseBulk(keys []K, all bool) int {
	if len(keys) == 0 {
		return 0
	}
	hs := c.byStripe(len(keys), func(i int) K { return keys[i] })
	removed := 0
	c.forEachStripe(hs, func(run []hashed) {
		for _, h := range run {
			removed += c.store.eraseMatching(c.store.indexOf(h.hash), keys[h.pos], c.equal, !all)
		}
	})
	c.shrank(removed)
	return removed
}
