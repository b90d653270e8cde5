package stripedmap

// Visit calls fn for every element under the write lock of one stripe at a
// time. It returns the number of calls, negated if fn stopped the walk.
//
// Each stripe is seen atomically; elements in different stripes may be
// observed at different moments. An element present for the whole walk is
// visited exactly once, even if the map grows meanwhile.
func (c *container[K, V]) Visit(fn VisitorFunc[K, V]) int {
	total := 0
	for s := 0; s < c.stripes.len(); s++ {
		c.stripes.lockWrite(s)
		n, stopped := c.visitStripe(s, fn)
		c.stripes.unlockWrite(s)
		total += n
		if stopped {
			return -total
		}
	}
	return total
}

// VisitReadOnly is Visit under read locks.
func (c *container[K, V]) VisitReadOnly(fn ReadOnlyVisitorFunc[K, V]) int {
	visit := readOnly(fn)
	total := 0
	for s := 0; s < c.stripes.len(); s++ {
		c.stripes.lockRead(s)
		n, stopped := c.visitStripe(s, visit)
		c.stripes.unlockRead(s)
		total += n
		if stopped {
			return -total
		}
	}
	return total
}

// visitStripe walks the buckets guarded by stripe s. The caller holds the
// stripe lock.
func (c *container[K, V]) visitStripe(s int, fn VisitorFunc[K, V]) (int, bool) {
	st := c.store
	step := c.stripes.len()
	total := 0
	for b := s; b < st.numBuckets(); b += step {
		n, stopped := st.visitBucket(b, fn)
		total += n
		if stopped {
			return total, true
		}
	}
	return total, false
}
