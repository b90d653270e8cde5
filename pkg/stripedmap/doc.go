// Package stripedmap provides concurrent hash maps guarded by lock stripes.
//
// The bucket array is split across a fixed number of stripes, each a
// reader/writer lock. A key's stripe depends only on its hash, so it stays
// the same while the bucket array grows:
//
//   - Striping: operations on different stripes proceed in parallel
//   - Read sharing: lookups and read-only visits share a stripe's lock
//   - Online growth: the array doubles (or more) once the load factor is
//     exceeded, with every stripe locked for the move
//   - Visitors: callbacks run under the stripe lock and may stop a walk
//
// Usage:
//
//	m, err := stripedmap.New[string, int](stripedmap.WithStripes(16))
//	if err != nil {
//		return err
//	}
//	_ = m.Insert("a", 1)
//	_ = m.Insert("a", 2)
//	values, n := m.GetValueAll("a") // [1 2] in some order, 2
//
// Visitors must not call back into the map they are visiting; doing so can
// deadlock.
package stripedmap
