package config

import (
	"time"

	"github.com/yndnr/stripedmap-go/pkg/stripedmap"
)

// Default configuration values.
const (
	DefaultHash = "murmur3"

	DefaultWorkers      = 8
	DefaultOperations   = 1_000_000
	DefaultKeySpace     = 100_000
	DefaultDistribution = "uniform"
	DefaultBulkSize     = 64

	DefaultMetricsAddr = "127.0.0.1:9464"
	DefaultMetricsPath = "/metrics"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	DefaultDuration = time.Duration(0)
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Map: MapSection{
			InitialBuckets: stripedmap.DefaultInitialBuckets,
			Stripes:        stripedmap.DefaultStripes,
			MaxLoadFactor:  stripedmap.DefaultMaxLoadFactor,
			RehashEnabled:  true,
			Hash:           DefaultHash,
		},
		Workload: WorkloadSection{
			Workers:      DefaultWorkers,
			Operations:   DefaultOperations,
			Duration:     DefaultDuration,
			KeySpace:     DefaultKeySpace,
			Distribution: DefaultDistribution,
			BulkSize:     DefaultBulkSize,
			Mix: MixSection{
				Insert: 40,
				Erase:  20,
				Get:    30,
				Update: 5,
				Visit:  4,
				Bulk:   1,
			},
		},
		Metrics: MetricsSection{
			Addr: DefaultMetricsAddr,
			Path: DefaultMetricsPath,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
