package metric

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/stripedmap-go/pkg/stripedmap"
)

// StatsSource is anything that can report map statistics.
type StatsSource interface {
	Stats() stripedmap.Stats
}

// Collector samples a map on every scrape.
type Collector struct {
	source StatsSource

	size           *prometheus.Desc
	buckets        *prometheus.Desc
	stripes        *prometheus.Desc
	loadFactor     *prometheus.Desc
	maxLoadFactor  *prometheus.Desc
	rehashEnabled  *prometheus.Desc
	rehashes       *prometheus.Desc
	rehashFailures *prometheus.Desc
	stripeEntries  *prometheus.Desc
	stripeMaxChain *prometheus.Desc
}

// NewCollector creates a collector for source. name is attached as the
// "map" label so several maps can share a registry.
func NewCollector(name string, source StatsSource) *Collector {
	labels := prometheus.Labels{"map": name}
	desc := func(metric, help string, variable ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(Namespace, "map", metric), help, variable, labels)
	}

	return &Collector{
		source:         source,
		size:           desc("elements", "Number of elements in the map"),
		buckets:        desc("buckets", "Number of buckets"),
		stripes:        desc("stripes", "Number of lock stripes"),
		loadFactor:     desc("load_factor", "Elements per bucket"),
		maxLoadFactor:  desc("max_load_factor", "Load factor that triggers growth"),
		rehashEnabled:  desc("rehash_enabled", "1 if automatic growth is enabled"),
		rehashes:       desc("rehashes_total", "Completed rehashes"),
		rehashFailures: desc("rehash_failures_total", "Rehashes abandoned because allocation failed"),
		stripeEntries:  desc("stripe_elements", "Elements guarded by each stripe", "stripe"),
		stripeMaxChain: desc("stripe_max_bucket_elements", "Largest bucket guarded by each stripe", "stripe"),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.size, c.buckets, c.stripes, c.loadFactor, c.maxLoadFactor,
		c.rehashEnabled, c.rehashes, c.rehashFailures,
		c.stripeEntries, c.stripeMaxChain,
	} {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	st := c.source.Stats()

	enabled := 0.0
	if st.RehashEnabled {
		enabled = 1
	}

	ch <- prometheus.MustNewConstMetric(c.size, prometheus.GaugeValue, float64(st.Size))
	ch <- prometheus.MustNewConstMetric(c.buckets, prometheus.GaugeValue, float64(st.Buckets))
	ch <- prometheus.MustNewConstMetric(c.stripes, prometheus.GaugeValue, float64(st.NumStripes))
	ch <- prometheus.MustNewConstMetric(c.loadFactor, prometheus.GaugeValue, st.LoadFactor)
	ch <- prometheus.MustNewConstMetric(c.maxLoadFactor, prometheus.GaugeValue, st.MaxLoadFactor)
	ch <- prometheus.MustNewConstMetric(c.rehashEnabled, prometheus.GaugeValue, enabled)
	ch <- prometheus.MustNewConstMetric(c.rehashes, prometheus.CounterValue, float64(st.Rehashes))
	ch <- prometheus.MustNewConstMetric(c.rehashFailures, prometheus.CounterValue, float64(st.RehashFailures))

	for _, s := range st.PerStripe {
		idx := strconv.Itoa(s.Index)
		ch <- prometheus.MustNewConstMetric(c.stripeEntries, prometheus.GaugeValue, float64(s.Entries), idx)
		ch <- prometheus.MustNewConstMetric(c.stripeMaxChain, prometheus.GaugeValue, float64(s.MaxBucket), idx)
	}
}
