package config

import (
	"fmt"
	"reflect"

	"github.com/yndnr/stripedmap-go/internal/infra/confloader"
	"github.com/yndnr/stripedmap-go/pkg/hashfn"
	"github.com/yndnr/stripedmap-go/pkg/stripedmap"
)

// Load builds the configuration from defaults, the optional file at path,
// STRIPEDMAP_* environment variables and overrides, then sanitizes and
// verifies it.
func Load(path string, overrides map[string]any) (*Config, error) {
	cfg, _, err := load(path, overrides)
	return cfg, err
}

// LoadSettings is Load that also reports, for every key, the effective
// value and the layer it came from.
func LoadSettings(path string, overrides map[string]any) (*Config, []Setting, error) {
	cfg, loader, err := load(path, overrides)
	if err != nil {
		return nil, nil, err
	}
	settings := flatten(reflect.ValueOf(cfg).Elem(), "")
	for i := range settings {
		if o := loader.Origin(settings[i].Key); o != "" {
			settings[i].Origin = o
		}
	}
	return cfg, settings, nil
}

func load(path string, overrides map[string]any) (*Config, *confloader.Loader, error) {
	loader := confloader.NewLoader(
		confloader.WithConfigFile(path),
		confloader.WithOverrides(overrides),
	)
	raw := Default()
	if err := loader.Load(raw); err != nil {
		return nil, nil, err
	}
	cfg := raw.Sanitize()
	if err := Verify(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, loader, nil
}

// MapOptions translates the map section into construction options.
func (s *MapSection) MapOptions() []stripedmap.Option {
	opts := []stripedmap.Option{
		stripedmap.WithInitialBuckets(s.InitialBuckets),
		stripedmap.WithStripes(s.Stripes),
		stripedmap.WithMaxLoadFactor(s.MaxLoadFactor),
	}
	if !s.RehashEnabled {
		opts = append(opts, stripedmap.WithRehashDisabled())
	}
	if s.MemoryLimit > 0 {
		opts = append(opts, stripedmap.WithAllocator(stripedmap.NewLimitAllocator(s.MemoryLimit)))
	}
	return opts
}

// Hasher returns the configured string hash function.
func (s *MapSection) Hasher() (func(string) uint64, error) {
	h, ok := hashfn.ByName(s.Hash)
	if !ok {
		return nil, fmt.Errorf("unknown hash %q", s.Hash)
	}
	return h, nil
}
