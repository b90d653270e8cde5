package stripedmap

// StripeStats describes the buckets guarded by one stripe.
type StripeStats struct {
	Index     int `json:"index" yaml:"index"`
	Buckets   int `json:"buckets" yaml:"buckets"`
	Entries   int `json:"entries" yaml:"entries"`
	MaxBucket int `json:"max_bucket" yaml:"max_bucket"`
}

// Stats is a point-in-time summary of a map. Stripes are sampled one after
// another, so under concurrent mutation the per-stripe entries need not add
// up to Size.
type Stats struct {
	Size           int           `json:"size" yaml:"size"`
	Buckets        int           `json:"buckets" yaml:"buckets"`
	NumStripes     int           `json:"stripes" yaml:"stripes"`
	LoadFactor     float64       `json:"load_factor" yaml:"load_factor"`
	MaxLoadFactor  float64       `json:"max_load_factor" yaml:"max_load_factor"`
	RehashEnabled  bool          `json:"rehash_enabled" yaml:"rehash_enabled"`
	Rehashes       uint64        `json:"rehashes" yaml:"rehashes"`
	RehashFailures uint64        `json:"rehash_failures" yaml:"rehash_failures"`
	PerStripe      []StripeStats `json:"per_stripe,omitempty" yaml:"per_stripe,omitempty"`
}

// Stats returns a snapshot of the map's shape and rehash history.
func (c *container[K, V]) Stats() Stats {
	per := make([]StripeStats, c.stripes.len())
	for s := range per {
		c.stripes.lockRead(s)
		st := c.store
		ss := StripeStats{Index: s}
		for b := s; b < st.numBuckets(); b += len(per) {
			n := st.bucketLen(b)
			ss.Buckets++
			ss.Entries += n
			ss.MaxBucket = max(ss.MaxBucket, n)
		}
		c.stripes.unlockRead(s)
		per[s] = ss
	}

	return Stats{
		Size:           c.Size(),
		Buckets:        c.BucketCount(),
		NumStripes:     c.stripes.len(),
		LoadFactor:     c.LoadFactor(),
		MaxLoadFactor:  c.MaxLoadFactor(),
		RehashEnabled:  c.IsRehashEnabled(),
		Rehashes:       c.rehashes.Load(),
		RehashFailures: c.rehashFailures.Load(),
		PerStripe:      per,
	}
}
