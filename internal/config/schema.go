package config

import "time"

// Config is the root configuration.
type Config struct {
	Map      MapSection      `koanf:"map" json:"map" yaml:"map"`
	Workload WorkloadSection `koanf:"workload" json:"workload" yaml:"workload"`
	Metrics  MetricsSection  `koanf:"metrics" json:"metrics" yaml:"metrics"`
	Log      LogSection      `koanf:"log" json:"log" yaml:"log"`
}

// MapSection configures the map under test.
type MapSection struct {
	InitialBuckets int     `koanf:"initial_buckets" json:"initial_buckets" yaml:"initial_buckets"`
	Stripes        int     `koanf:"stripes" json:"stripes" yaml:"stripes"`
	MaxLoadFactor  float64 `koanf:"max_load_factor" json:"max_load_factor" yaml:"max_load_factor"`
	RehashEnabled  bool    `koanf:"rehash_enabled" json:"rehash_enabled" yaml:"rehash_enabled"`

	// Hash names the key hash function: murmur3, xxhash or maphash.
	Hash string `koanf:"hash" json:"hash" yaml:"hash"`

	// MemoryLimit caps bucket and entry memory in bytes. 0 means no limit.
	MemoryLimit int64 `koanf:"memory_limit" json:"memory_limit" yaml:"memory_limit"`
}

// WorkloadSection configures the load generator.
type WorkloadSection struct {
	Workers int `koanf:"workers" json:"workers" yaml:"workers"`

	// Operations is the total number of operations across workers.
	// With Duration it is whichever limit is reached first. Zero for both
	// runs until cancelled.
	Operations int           `koanf:"operations" json:"operations" yaml:"operations"`
	Duration   time.Duration `koanf:"duration" json:"duration" yaml:"duration"`

	KeySpace int `koanf:"key_space" json:"key_space" yaml:"key_space"`

	// Distribution is "uniform" (keys drawn from KeySpace) or "unique"
	// (every insert uses a fresh ULID).
	Distribution string `koanf:"distribution" json:"distribution" yaml:"distribution"`

	// Rate limits operations per second across workers. 0 is unlimited.
	Rate  float64 `koanf:"rate" json:"rate" yaml:"rate"`
	Burst int     `koanf:"burst" json:"burst" yaml:"burst"`

	BulkSize int        `koanf:"bulk_size" json:"bulk_size" yaml:"bulk_size"`
	Mix      MixSection `koanf:"mix" json:"mix" yaml:"mix"`
}

// MixSection holds relative operation weights.
type MixSection struct {
	Insert int `koanf:"insert" json:"insert" yaml:"insert"`
	Erase  int `koanf:"erase" json:"erase" yaml:"erase"`
	Get    int `koanf:"get" json:"get" yaml:"get"`
	Update int `koanf:"update" json:"update" yaml:"update"`
	Visit  int `koanf:"visit" json:"visit" yaml:"visit"`
	Bulk   int `koanf:"bulk" json:"bulk" yaml:"bulk"`
}

// MetricsSection configures the Prometheus endpoint of the serve command.
type MetricsSection struct {
	Addr string `koanf:"addr" json:"addr" yaml:"addr"`
	Path string `koanf:"path" json:"path" yaml:"path"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" json:"level" yaml:"level"`
	Format string `koanf:"format" json:"format" yaml:"format"`
}
