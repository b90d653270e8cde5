package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/yndnr/stripedmap-go/internal/telemetry/logger"
	"github.com/yndnr/stripedmap-go/pkg/hashfn"
)

// Verify validates the configuration and returns every problem found.
func Verify(cfg *Config) error {
	return errors.Join(
		verifyMap(&cfg.Map),
		verifyWorkload(&cfg.Workload),
		verifyMetrics(&cfg.Metrics),
		verifyLog(&cfg.Log),
	)
}

func verifyMap(cfg *MapSection) error {
	var errs []error
	if cfg.InitialBuckets < 1 {
		errs = append(errs, errors.New("map.initial_buckets must be at least 1"))
	}
	if cfg.Stripes < 1 {
		errs = append(errs, errors.New("map.stripes must be at least 1"))
	}
	if !(cfg.MaxLoadFactor > 0) || math.IsInf(cfg.MaxLoadFactor, 1) {
		errs = append(errs, fmt.Errorf("map.max_load_factor must be a positive number, got %v", cfg.MaxLoadFactor))
	}
	if _, ok := hashfn.ByName(cfg.Hash); !ok {
		errs = append(errs, fmt.Errorf("map.hash: unknown hash %q (want murmur3, xxhash or maphash)", cfg.Hash))
	}
	if cfg.MemoryLimit < 0 {
		errs = append(errs, errors.New("map.memory_limit must not be negative"))
	}
	return errors.Join(errs...)
}

func verifyWorkload(cfg *WorkloadSection) error {
	var errs []error
	if cfg.Workers < 1 {
		errs = append(errs, errors.New("workload.workers must be at least 1"))
	}
	if cfg.Operations < 0 {
		errs = append(errs, errors.New("workload.operations must not be negative"))
	}
	if cfg.Duration < 0 {
		errs = append(errs, errors.New("workload.duration must not be negative"))
	}
	if cfg.KeySpace < 1 {
		errs = append(errs, errors.New("workload.key_space must be at least 1"))
	}
	switch strings.ToLower(cfg.Distribution) {
	case "uniform", "unique":
	default:
		errs = append(errs, fmt.Errorf("workload.distribution: unknown distribution %q (want uniform or unique)", cfg.Distribution))
	}
	if cfg.Rate < 0 {
		errs = append(errs, errors.New("workload.rate must not be negative"))
	}
	if cfg.Burst < 0 {
		errs = append(errs, errors.New("workload.burst must not be negative"))
	}
	if cfg.BulkSize < 1 {
		errs = append(errs, errors.New("workload.bulk_size must be at least 1"))
	}

	m := cfg.Mix
	for name, w := range map[string]int{
		"insert": m.Insert, "erase": m.Erase, "get": m.Get,
		"update": m.Update, "visit": m.Visit, "bulk": m.Bulk,
	} {
		if w < 0 {
			errs = append(errs, fmt.Errorf("workload.mix.%s must not be negative", name))
		}
	}
	if m.Insert+m.Erase+m.Get+m.Update+m.Visit+m.Bulk <= 0 {
		errs = append(errs, errors.New("workload.mix must give at least one operation a positive weight"))
	}
	return errors.Join(errs...)
}

func verifyMetrics(cfg *MetricsSection) error {
	if cfg.Addr == "" {
		return errors.New("metrics.addr is required")
	}
	if !strings.HasPrefix(cfg.Path, "/") {
		return fmt.Errorf("metrics.path must start with /, got %q", cfg.Path)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	var errs []error
	if _, err := logger.ParseLevel(cfg.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", cfg.Format))
	}
	return errors.Join(errs...)
}
